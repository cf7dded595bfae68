// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package fibcode

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	stdutf8 "unicode/utf8"

	"github.com/SnellerInc/fibcode/fib"
	"github.com/SnellerInc/fibcode/utf8"
)

func encode(t testing.TB, in []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	if err := EncodeUTF8ToFibonacci(&out, bytes.NewReader(in)); err != nil {
		t.Fatalf("encode %q: %v", in, err)
	}
	return out.Bytes()
}

func decode(t testing.TB, in []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	if err := DecodeFibonacciToUTF8(&out, bytes.NewReader(in)); err != nil {
		t.Fatalf("decode % x: %v", in, err)
	}
	return out.Bytes()
}

func TestEncodeA(t *testing.T) {
	// 'A' = 65, 65+1 = 66 = 55 + 8 + 3 = F(9) + F(5) + F(3):
	// digits 8, 4 and 2 plus the terminator in bit 9
	got := encode(t, []byte("A"))
	if want := []byte{0x14, 0x03}; !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
	if back := decode(t, got); string(back) != "A" {
		t.Fatalf("decoded %q", back)
	}
}

func TestKnownStreams(t *testing.T) {
	for _, td := range []struct {
		text string
		fib  []byte
	}{
		{"", nil},
		{"\x00", []byte{0x03}},
		{"A", []byte{0x14, 0x03}},
		{"AB", []byte{0x14, 0x57, 0x0c}},
		{"hello", []byte{0x24, 0x06, 0xb1, 0x8a, 0x55, 0x2c, 0x64}},
		{"ż", []byte{0x05, 0x30}},
		{"€", []byte{0x04, 0x80, 0x0c}},
		{"😀", []byte{0x55, 0x0a, 0x04, 0x03}},
		{"\U0010ffff", []byte{0x08, 0x49, 0x85, 0x32}},
	} {
		t.Run(td.text, func(t *testing.T) {
			got := encode(t, []byte(td.text))
			if !bytes.Equal(got, td.fib) {
				t.Fatalf("encode: got % x, want % x", got, td.fib)
			}
			back := decode(t, td.fib)
			if string(back) != td.text {
				t.Fatalf("decode: got %q, want %q", back, td.text)
			}
		})
	}
}

func TestBoundaries(t *testing.T) {
	for _, r := range []rune{
		0, 0x7f, 0x80, 0x7ff, 0x800, 0xffff, 0x10000, 0x10ffff,
	} {
		in := stdutf8.AppendRune(nil, r)
		back := decode(t, encode(t, in))
		if !bytes.Equal(back, in) {
			t.Errorf("%U: round trip gave % x, want % x", r, back, in)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	// 0x110000 in the 4-byte form
	var out bytes.Buffer
	err := EncodeUTF8ToFibonacci(&out, bytes.NewReader([]byte{0xf4, 0x90, 0x80, 0x80}))
	if !errors.Is(err, ErrFormat) || !errors.Is(err, utf8.ErrRange) {
		t.Fatalf("got %v", err)
	}
	// the largest valid codeword decodes to U+10FFFF
	cw, err := fib.Encode(fib.MaxValue)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	for i := 0; i < cw.Len; i += 8 {
		buf.WriteByte(byte(cw.Bits >> i))
	}
	if got := decode(t, buf.Bytes()); string(got) != "\U0010ffff" {
		t.Fatalf("got %q", got)
	}
}

func TestEmpty(t *testing.T) {
	if got := encode(t, nil); len(got) != 0 {
		t.Fatalf("encode(empty) = % x", got)
	}
	if got := decode(t, nil); len(got) != 0 {
		t.Fatalf("decode(empty) = % x", got)
	}
}

func TestPadding(t *testing.T) {
	got := decode(t, []byte{0x14, 0x03, 0x00, 0x00})
	if string(got) != "A" {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeErrors(t *testing.T) {
	for _, td := range []struct {
		name string
		in   []byte
		err  error
		out  []byte // complete output bytes written before the error
	}{
		{"orphan continuation", []byte{0x80}, utf8.ErrInvalid, nil},
		{"bad continuation after 4-byte lead", []byte{0xf0, 0x9f, 0x41, 0x80}, utf8.ErrInvalid, nil},
		{"five byte lead", []byte{0xf8}, utf8.ErrInvalid, nil},
		{"truncated", []byte{0xe2, 0x82}, utf8.ErrTruncated, nil},
		// "AB" fills one byte completely before the bad sequence
		{"after text", []byte{'A', 'B', 0xc3}, utf8.ErrTruncated, []byte{0x14, 0x57}},
	} {
		t.Run(td.name, func(t *testing.T) {
			var out bytes.Buffer
			err := EncodeUTF8ToFibonacci(&out, bytes.NewReader(td.in))
			if !errors.Is(err, td.err) {
				t.Fatalf("got %v, want %v", err, td.err)
			}
			var fe *FormatError
			if !errors.As(err, &fe) || fe.Op != "encode" {
				t.Fatalf("expected an encode *FormatError, got %T", err)
			}
			if !bytes.Equal(out.Bytes(), td.out) {
				t.Fatalf("output % x, want % x", out.Bytes(), td.out)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, td := range []struct {
		name string
		in   []byte
		err  error
	}{
		{"truncated", []byte{0x14, 0x03, 0x04}, fib.ErrTruncated},
		{"unterminated", []byte{0x14}, fib.ErrTruncated},
		{"oversized", []byte{0, 0, 0, 0x20}, fib.ErrRange},
	} {
		t.Run(td.name, func(t *testing.T) {
			var out bytes.Buffer
			err := DecodeFibonacciToUTF8(&out, bytes.NewReader(td.in))
			if !errors.Is(err, td.err) || !errors.Is(err, ErrFormat) {
				t.Fatalf("got %v, want %v", err, td.err)
			}
			if !strings.Contains(err.Error(), "decode") {
				t.Fatalf("error %q does not name the operation", err)
			}
		})
	}
}

func TestStrict(t *testing.T) {
	surrogate := []byte{0xed, 0xa0, 0x80}
	// permissive by default
	fibs := encode(t, surrogate)
	if back := decode(t, fibs); !bytes.Equal(back, surrogate) {
		t.Fatalf("surrogate round trip: % x", back)
	}
	c := Converter{Strict: true}
	var out bytes.Buffer
	if _, err := c.Encode(&out, bytes.NewReader(surrogate)); !errors.Is(err, utf8.ErrSurrogate) {
		t.Fatalf("strict encode: %v", err)
	}
	out.Reset()
	if _, err := c.Decode(&out, bytes.NewReader(fibs)); !errors.Is(err, utf8.ErrSurrogate) {
		t.Fatalf("strict decode: %v", err)
	}
}

func TestStatsAndLogf(t *testing.T) {
	var logged []string
	c := Converter{Logf: func(f string, args ...interface{}) { logged = append(logged, f) }}
	var out bytes.Buffer
	st, err := c.Encode(&out, strings.NewReader("żółw"))
	if err != nil {
		t.Fatal(err)
	}
	if st.Runes != 4 || st.BytesIn != int64(len("żółw")) || st.BytesOut != int64(out.Len()) {
		t.Fatalf("unexpected encode stats %+v (out %d)", st, out.Len())
	}
	fibs := append([]byte(nil), out.Bytes()...)
	out.Reset()
	st, err = c.Decode(&out, bytes.NewReader(fibs))
	if err != nil {
		t.Fatal(err)
	}
	if st.Runes != 4 || st.BytesIn != int64(len(fibs)) || st.BytesOut != int64(len("żółw")) {
		t.Fatalf("unexpected decode stats %+v", st)
	}
	if len(logged) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(logged))
	}
}

type errReader struct{}

var errRead = errors.New("read failed")

func (errReader) Read([]byte) (int, error) { return 0, errRead }

type errWriter struct{}

var errWrite = errors.New("write failed")

func (errWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestIOErrors(t *testing.T) {
	err := EncodeUTF8ToFibonacci(io.Discard, errReader{})
	if !errors.Is(err, errRead) || errors.Is(err, ErrFormat) {
		t.Fatalf("encode read: %v", err)
	}
	err = DecodeFibonacciToUTF8(io.Discard, errReader{})
	if !errors.Is(err, errRead) || errors.Is(err, ErrFormat) {
		t.Fatalf("decode read: %v", err)
	}
	err = EncodeUTF8ToFibonacci(errWriter{}, strings.NewReader("A"))
	if !errors.Is(err, errWrite) {
		t.Fatalf("encode write: %v", err)
	}
	err = DecodeFibonacciToUTF8(errWriter{}, bytes.NewReader([]byte{0x14, 0x03}))
	if !errors.Is(err, errWrite) {
		t.Fatalf("decode write: %v", err)
	}
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var c Converter
	_, err := c.EncodeContext(ctx, io.Discard, strings.NewReader("abc"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("encode: %v", err)
	}
	_, err = c.DecodeContext(ctx, io.Discard, bytes.NewReader([]byte{0x14, 0x03}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("decode: %v", err)
	}
}

func TestRandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		var in []byte
		n := rng.Intn(64)
		for i := 0; i < n; i++ {
			var r rune
			switch rng.Intn(4) {
			case 0:
				r = rune(rng.Intn(0x80))
			case 1:
				r = rune(0x80 + rng.Intn(0x800-0x80))
			case 2:
				r = rune(0x800 + rng.Intn(0x10000-0x800))
			default:
				r = rune(0x10000 + rng.Intn(0x110000-0x10000))
			}
			in = utf8AppendAny(in, r)
		}
		fibs := encode(t, in)
		if len(fibs) > 0 && fibs[len(fibs)-1] == 0 {
			t.Fatalf("iter %d: trailing zero byte emitted", iter)
		}
		if back := decode(t, fibs); !bytes.Equal(back, in) {
			t.Fatalf("iter %d: round trip mismatch\n in: % x\nout: % x", iter, in, back)
		}
	}
}

// utf8AppendAny encodes r even if it is a surrogate,
// which unicode/utf8 would replace with U+FFFD.
func utf8AppendAny(dst []byte, r rune) []byte {
	out, err := utf8.AppendRune(dst, r)
	if err != nil {
		panic(err)
	}
	return out
}

func TestGolden(t *testing.T) {
	names, err := filepath.Glob(filepath.Join("testdata", "*.utf8"))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		fibname := strings.TrimSuffix(name, ".utf8") + ".fib"
		want, err := os.ReadFile(fibname)
		if os.IsNotExist(err) {
			continue // malformed inputs have no .fib pair
		}
		if err != nil {
			t.Fatal(err)
		}
		t.Run(filepath.Base(name), func(t *testing.T) {
			text, err := os.ReadFile(name)
			if err != nil {
				t.Fatal(err)
			}
			if got := encode(t, text); !bytes.Equal(got, want) {
				t.Fatalf("encode mismatch:\n got % x\nwant % x", got, want)
			}
			if got := decode(t, want); !bytes.Equal(got, text) {
				t.Fatalf("decode mismatch:\n got %q\nwant %q", got, text)
			}
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	text := bytes.Repeat([]byte("Příliš žluťoučký kůň úpěl ďábelské ódy. "), 64)
	b.SetBytes(int64(len(text)))
	for i := 0; i < b.N; i++ {
		EncodeUTF8ToFibonacci(io.Discard, bytes.NewReader(text))
	}
}

func BenchmarkDecode(b *testing.B) {
	text := bytes.Repeat([]byte("Příliš žluťoučký kůň úpěl ďábelské ódy. "), 64)
	fibs := encode(b, text)
	b.SetBytes(int64(len(fibs)))
	for i := 0; i < b.N; i++ {
		DecodeFibonacciToUTF8(io.Discard, bytes.NewReader(fibs))
	}
}

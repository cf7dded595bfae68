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

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/SnellerInc/fibcode"
	"github.com/SnellerInc/fibcode/utf8"
)

func TestMain(m *testing.M) {
	ctx = context.Background()
	os.Exit(m.Run())
}

func TestStatMatchesEncoder(t *testing.T) {
	for _, name := range []string{"ascii", "czech", "mixed", "bounds", "empty", "surrogate"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join("..", "..", "testdata", name+".utf8")
			st, err := statFile(path, utf8.Permissive)
			if err != nil {
				t.Fatal(err)
			}
			text, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var out bytes.Buffer
			var conv fibcode.Converter
			est, err := conv.Encode(&out, bytes.NewReader(text))
			if err != nil {
				t.Fatal(err)
			}
			if int64(st.runes) != est.Runes {
				t.Errorf("runes: stat %d, encoder %d", st.runes, est.Runes)
			}
			if st.fibBytes != out.Len() {
				t.Errorf("bytes: stat %d, encoder %d", st.fibBytes, out.Len())
			}
		})
	}
}

func TestStatInvalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   []byte
		mode utf8.Mode
		err  error
	}{
		{"truncated", []byte{0xc3}, utf8.Permissive, utf8.ErrTruncated},
		{"orphan", []byte{'a', 0x80}, utf8.Permissive, utf8.ErrInvalid},
		{"too large", []byte{0xf4, 0x90, 0x80, 0x80}, utf8.Permissive, utf8.ErrRange},
		{"surrogate strict", []byte{0xed, 0xa0, 0x80}, utf8.Strict, utf8.ErrSurrogate},
		{"overlong strict", []byte{0xc0, 0x81}, utf8.Strict, utf8.ErrOverlong},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := statBytes(tc.in, tc.mode)
			if !errors.Is(err, tc.err) {
				t.Fatalf("got %v, want %v", err, tc.err)
			}
		})
	}
}

func TestStatPermissive(t *testing.T) {
	// accepted by the default encoder, so
	// stat must size it rather than reject it
	st, err := statBytes([]byte("a\xed\xa0\x80"), utf8.Permissive)
	if err != nil {
		t.Fatal(err)
	}
	if st.runes != 2 || st.utf8 != 4 {
		t.Fatalf("got %+v", st)
	}
}

func TestRoundtrip(t *testing.T) {
	var conv fibcode.Converter
	ok, err := roundtrip(filepath.Join("..", "..", "testdata", "mixed.utf8"), &conv)
	if err != nil || !ok {
		t.Fatalf("got (%v, %v)", ok, err)
	}
	_, err = roundtrip(filepath.Join("..", "..", "testdata", "truncated.utf8"), &conv)
	if err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(body string) string {
		p := filepath.Join(dir, "fibcode.yaml")
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	c, err := loadConfig(write("strict: true\ncompression: zstd\natomic: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !c.Strict || c.Compression != "zstd" || !c.Atomic || c.Verbose {
		t.Fatalf("unexpected config %+v", c)
	}
	if _, err := loadConfig(write("compression: lzma\n")); err == nil {
		t.Error("expected an error for an unknown compression")
	}
	if _, err := loadConfig(write("strikt: true\n")); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestConvertStream(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join("..", "..", "testdata", "czech.utf8")
	fibs := filepath.Join(dir, "czech.fib.zst")
	back := filepath.Join(dir, "czech.utf8")
	opts := &fibcode.FileOptions{Compression: "zstd"}
	if err := convertStream(src, fibs, true, opts); err != nil {
		t.Fatal(err)
	}
	if err := convertStream(fibs, back, false, opts); err != nil {
		t.Fatal(err)
	}
	want, _ := os.ReadFile(src)
	got, _ := os.ReadFile(back)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestApplets(t *testing.T) {
	seen := make(map[string]bool)
	for i := range applets {
		if seen[applets[i].name] {
			t.Errorf("duplicate applet %q", applets[i].name)
		}
		seen[applets[i].name] = true
	}
	for _, name := range []string{"encode", "decode", "roundtrip", "stat", "check", "version", "buildinfo"} {
		if !seen[name] {
			t.Errorf("applet %q not registered", name)
		}
	}
}

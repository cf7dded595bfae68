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

// Package fibcode transcodes between UTF-8 text
// and a Fibonacci-coded bit stream.
//
// In the Fibonacci direction every code point cp
// is written as the Zeckendorf codeword of cp+1
// (see package fib), and the codewords are packed
// into bytes least-significant bit first. The
// reverse direction splits the bit stream at each
// "11" terminator and writes the recovered code
// points back out as UTF-8.
package fibcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/SnellerInc/fibcode/fib"
	"github.com/SnellerInc/fibcode/internal/bitio"
	"github.com/SnellerInc/fibcode/utf8"
)

// ErrFormat matches every *FormatError
// when used with errors.Is.
var ErrFormat = errors.New("fibcode: format error")

// FormatError is returned when the input of a
// conversion is malformed: an invalid or truncated
// UTF-8 sequence, a truncated or oversized
// Fibonacci codeword, or a code point outside the
// Unicode range.
type FormatError struct {
	// Op is "encode" or "decode".
	Op string
	// Offset is the number of input bytes
	// consumed when the error was detected.
	Offset int64
	// Err is the underlying sentinel from
	// package utf8 or package fib.
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("fibcode: %s: malformed input at byte %d: %s", e.Op, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is implements errors.Is.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// formatErrors are the sentinels that
// indicate malformed input rather than I/O failure.
var formatErrors = []error{
	utf8.ErrInvalid,
	utf8.ErrTruncated,
	utf8.ErrRange,
	utf8.ErrSurrogate,
	utf8.ErrOverlong,
	fib.ErrTruncated,
	fib.ErrRange,
	fib.ErrZero,
}

func isFormat(err error) bool {
	for i := range formatErrors {
		if errors.Is(err, formatErrors[i]) {
			return true
		}
	}
	return false
}

// Stats describes a finished (or aborted) conversion.
type Stats struct {
	// Runes is the number of code points converted.
	Runes int64
	// BytesIn is the number of input bytes consumed.
	BytesIn int64
	// BytesOut is the number of bytes written.
	BytesOut int64
}

// checkEvery is the number of code points
// converted between context checks.
const checkEvery = 4096

// Converter holds the settings of a conversion.
// The zero value is ready to use and accepts
// surrogates, as the stream format allows.
type Converter struct {
	// Strict rejects surrogate code points and
	// overlong UTF-8 forms in either direction.
	Strict bool
	// Logf, if non-nil, is used to report a
	// summary of each conversion.
	Logf func(f string, args ...interface{})
}

func (c *Converter) mode() utf8.Mode {
	if c.Strict {
		return utf8.Strict
	}
	return utf8.Permissive
}

func (c *Converter) logf(f string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(f, args...)
	}
}

func byteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// countingReader counts the bytes handed out
// by an io.ByteReader.
type countingReader struct {
	r io.ByteReader
	n int64
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

// Encode reads UTF-8 text from src and writes its
// Fibonacci coding to dst. See EncodeContext.
func (c *Converter) Encode(dst io.Writer, src io.Reader) (Stats, error) {
	return c.EncodeContext(context.Background(), dst, src)
}

// EncodeContext reads UTF-8 text from src and
// writes its Fibonacci coding to dst.
//
// The conversion stops at the first malformed
// sequence with a *FormatError. Output produced
// before the error has already been written to
// dst and is not rolled back. Cancelling ctx
// aborts the conversion with ctx.Err().
func (c *Converter) EncodeContext(ctx context.Context, dst io.Writer, src io.Reader) (Stats, error) {
	var st Stats
	in := &countingReader{r: byteReader(src)}
	out := bufio.NewWriter(dst)
	w := bitio.NewWriter(out)
	mode := c.mode()
	fail := func(err error) (Stats, error) {
		// complete bytes reach dst; the partial
		// byte of an aborted stream does not
		out.Flush()
		st.BytesIn, st.BytesOut = in.n, w.Written()
		return st, err
	}
	for {
		if st.Runes%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return fail(err)
			}
		}
		cp, _, err := utf8.DecodeRuneMode(in, mode)
		if err == io.EOF {
			break
		}
		if err != nil {
			if isFormat(err) {
				return fail(&FormatError{Op: "encode", Offset: in.n, Err: err})
			}
			return fail(fmt.Errorf("fibcode: encode: reading input: %w", err))
		}
		cw, err := fib.Encode(uint32(cp) + 1)
		if err != nil {
			return fail(&FormatError{Op: "encode", Offset: in.n, Err: err})
		}
		w.WriteBits(cw.Bits, cw.Len)
		if err := w.Err(); err != nil {
			return fail(fmt.Errorf("fibcode: encode: writing output: %w", err))
		}
		st.Runes++
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("fibcode: encode: writing output: %w", err))
	}
	if err := out.Flush(); err != nil {
		return fail(fmt.Errorf("fibcode: encode: writing output: %w", err))
	}
	st.BytesIn, st.BytesOut = in.n, w.Written()
	c.logf("encoded %d runes: %d UTF-8 bytes -> %d Fibonacci bytes", st.Runes, st.BytesIn, st.BytesOut)
	return st, nil
}

// Decode reads a Fibonacci-coded stream from src
// and writes the UTF-8 text it encodes to dst.
// See DecodeContext.
func (c *Converter) Decode(dst io.Writer, src io.Reader) (Stats, error) {
	return c.DecodeContext(context.Background(), dst, src)
}

// DecodeContext reads a Fibonacci-coded stream from
// src and writes the UTF-8 text it encodes to dst.
//
// Zero bits after the last codeword are padding.
// A stream that ends inside a codeword, or a
// codeword whose value leaves the Unicode range,
// fails with a *FormatError; the range is checked
// digit by digit, so an oversized codeword is
// rejected before its terminator is reached.
func (c *Converter) DecodeContext(ctx context.Context, dst io.Writer, src io.Reader) (Stats, error) {
	var st Stats
	in := &countingReader{r: byteReader(src)}
	out := bufio.NewWriter(dst)
	d := fib.NewDecoder(bitio.NewReader(in))
	mode := c.mode()
	buf := make([]byte, 0, utf8.UTFMax)
	fail := func(err error) (Stats, error) {
		out.Flush()
		st.BytesIn = in.n
		return st, err
	}
	for {
		if st.Runes%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return fail(err)
			}
		}
		n, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if isFormat(err) {
				return fail(&FormatError{Op: "decode", Offset: in.n, Err: err})
			}
			return fail(fmt.Errorf("fibcode: decode: reading input: %w", err))
		}
		buf, err = utf8.AppendRuneMode(buf[:0], rune(n-1), mode)
		if err != nil {
			return fail(&FormatError{Op: "decode", Offset: in.n, Err: err})
		}
		if _, err := out.Write(buf); err != nil {
			return fail(fmt.Errorf("fibcode: decode: writing output: %w", err))
		}
		st.Runes++
		st.BytesOut += int64(len(buf))
	}
	if err := out.Flush(); err != nil {
		return fail(fmt.Errorf("fibcode: decode: writing output: %w", err))
	}
	st.BytesIn = in.n
	c.logf("decoded %d runes: %d Fibonacci bytes -> %d UTF-8 bytes", st.Runes, st.BytesIn, st.BytesOut)
	return st, nil
}

// EncodeUTF8ToFibonacci reads UTF-8 text from src and
// writes its Fibonacci coding to dst using the default
// (permissive) settings. Malformed input yields a
// *FormatError.
func EncodeUTF8ToFibonacci(dst io.Writer, src io.Reader) error {
	var c Converter
	_, err := c.Encode(dst, src)
	return err
}

// DecodeFibonacciToUTF8 reads a Fibonacci-coded
// stream from src and writes the UTF-8 text it
// encodes to dst using the default settings.
// Malformed input yields a *FormatError.
func DecodeFibonacciToUTF8(dst io.Writer, src io.Reader) error {
	var c Converter
	_, err := c.Decode(dst, src)
	return err
}

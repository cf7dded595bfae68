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

// Package utf8 provides the UTF-8 half of the
// Fibonacci transcoder: a byte-at-a-time rune
// decoder and an appending rune encoder, plus
// additional UTF-8 related functions.
package utf8

import (
	"errors"
	"io"
	"math/bits"
)

const (
	tx = 0b10_000000 // continuation prefix
	t2 = 0b110_00000
	t3 = 0b1110_0000
	t4 = 0b11110_000

	maskx = 0b00_111111

	rune1Max = 1<<7 - 1
	rune2Max = 1<<11 - 1
	rune3Max = 1<<16 - 1

	// MaxRune is the largest code point
	// accepted by either direction.
	MaxRune = '\U0010FFFF'

	surrogateMin = 0xD800
	surrogateMax = 0xDFFF

	// UTFMax is the longest encoding of a rune.
	UTFMax = 4
)

// Mode selects how much of the UTF-8
// well-formedness rules are enforced.
type Mode uint8

const (
	// Permissive accepts surrogates and overlong
	// forms; only the structure of each sequence
	// and the code point range are checked.
	Permissive Mode = iota
	// Strict additionally rejects surrogates
	// (U+D800..U+DFFF) and overlong encodings.
	Strict
)

var (
	// ErrInvalid is returned for a malformed
	// lead or continuation byte.
	ErrInvalid = errors.New("utf8: invalid byte sequence")
	// ErrTruncated is returned when the input
	// ends inside a multi-byte sequence.
	ErrTruncated = errors.New("utf8: truncated sequence")
	// ErrRange is returned for a code point
	// above MaxRune (or below zero).
	ErrRange = errors.New("utf8: code point out of range")
	// ErrSurrogate is returned in Strict mode
	// for a surrogate code point.
	ErrSurrogate = errors.New("utf8: surrogate code point")
	// ErrOverlong is returned in Strict mode
	// for a code point encoded with more bytes
	// than necessary.
	ErrOverlong = errors.New("utf8: overlong encoding")
)

// minRune is the smallest code point that
// needs n continuation bytes.
var minRune = [4]rune{0, rune1Max + 1, rune2Max + 1, rune3Max + 1}

// continuations returns the number of continuation
// bytes announced by a lead byte, or -1 if b
// cannot start a sequence.
func continuations(b byte) int {
	if b < tx {
		return 0
	}
	// leading ones after the mandatory first one
	n := bits.LeadingZeros8(^(b << 1))
	if n == 0 || n > 3 {
		return -1
	}
	return n
}

// DecodeRune reads one code point from r in
// Permissive mode. See DecodeRuneMode.
func DecodeRune(r io.ByteReader) (rune, int, error) {
	return DecodeRuneMode(r, Permissive)
}

// DecodeRuneMode reads one code point from r and
// returns it together with the number of bytes
// it occupied.
//
// If r is exhausted before the first byte,
// DecodeRuneMode returns io.EOF. Running out of
// input inside a sequence yields ErrTruncated.
// Other read errors are returned as-is.
func DecodeRuneMode(r io.ByteReader, mode Mode) (rune, int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	n := continuations(b)
	if n < 0 {
		return 0, 1, ErrInvalid
	}
	if n == 0 {
		return rune(b), 1, nil
	}
	cp := rune(b & (0xff >> (n + 2)))
	for i := 0; i < n; i++ {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = ErrTruncated
			}
			return 0, 1 + i, err
		}
		if c&^maskx != tx {
			return 0, 2 + i, ErrInvalid
		}
		cp = cp<<6 | rune(c&maskx)
	}
	size := n + 1
	if cp > MaxRune {
		return 0, size, ErrRange
	}
	if mode == Strict {
		if cp < minRune[n] {
			return 0, size, ErrOverlong
		}
		if cp >= surrogateMin && cp <= surrogateMax {
			return 0, size, ErrSurrogate
		}
	}
	return cp, size, nil
}

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

// Package fib implements the Fibonacci universal
// code over the Zeckendorf representation.
//
// Digit i of a codeword (bit i, lowest first on
// the wire) carries the Fibonacci number F(i+1)
// of the sequence 1, 2, 3, 5, 8, ... Because a
// Zeckendorf decomposition never contains two
// adjacent digits, every codeword is closed by an
// extra 1 placed right above its highest digit,
// and the first "11" in a stream always marks the
// end of a codeword.
package fib

import (
	"errors"
	"math/bits"
)

// MaxValue is the largest integer this package
// encodes or decodes: the Unicode code point
// range shifted up by one.
const MaxValue = 0x10FFFF + 1

var (
	// ErrZero is returned when encoding zero,
	// which has no Fibonacci representation.
	ErrZero = errors.New("fib: zero has no codeword")
	// ErrRange is returned for values above
	// MaxValue, on either side of the codec.
	ErrRange = errors.New("fib: value out of range")
	// ErrTruncated is returned when a stream
	// ends inside a codeword.
	ErrTruncated = errors.New("fib: truncated codeword")
)

// table holds F(1)..F(k) where F(k) is the
// first Fibonacci number above MaxValue.
var table []uint32

func init() {
	a, b := uint32(1), uint32(2)
	for {
		table = append(table, a)
		if a > MaxValue {
			break
		}
		a, b = b, a+b
	}
}

// TableSize returns the number of entries in the
// Fibonacci table; no valid codeword has a
// digit at or above this index.
func TableSize() int { return len(table) }

// Number returns the Fibonacci number carried by
// digit i, or 0 if i is outside the table.
func Number(i int) uint32 {
	if i < 0 || i >= len(table) {
		return 0
	}
	return table[i]
}

// largest returns the index of the largest
// Fibonacci number that is <= n (n >= 1).
func largest(n uint32) int {
	lo, hi := 0, len(table)
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if table[mid] <= n {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// Codeword is a Fibonacci codeword: Len bits,
// lowest first, with the terminator in bit Len-1.
type Codeword struct {
	Bits uint64
	Len  int
}

// Encode returns the codeword for n, computed
// by greedy largest-fit over the Fibonacci table.
func Encode(n uint32) (Codeword, error) {
	if n == 0 {
		return Codeword{}, ErrZero
	}
	if n > MaxValue {
		return Codeword{}, ErrRange
	}
	var c Codeword
	for n > 0 {
		i := largest(n)
		if c.Len == 0 {
			// terminator goes right above the first
			// (and therefore highest) digit
			c.Len = i + 2
			c.Bits |= 1 << (i + 1)
		}
		c.Bits |= 1 << i
		n -= table[i]
	}
	return c, nil
}

// Width returns the length in bits of the
// codeword for n, or 0 if n cannot be encoded.
func Width(n uint32) int {
	if n == 0 || n > MaxValue {
		return 0
	}
	return largest(n) + 2
}

// Digits returns the Zeckendorf digits of c
// with the terminator removed.
func (c Codeword) Digits() uint64 {
	if c.Len == 0 {
		return 0
	}
	return c.Bits &^ (1 << (c.Len - 1))
}

// Canonical reports whether c is a well-formed
// codeword: its only pair of adjacent set bits is
// the terminator and the digit right below it.
func (c Codeword) Canonical() bool {
	if c.Len < 2 || c.Len > 64 || bits.Len64(c.Bits) != c.Len {
		return false
	}
	d := c.Digits()
	return d&(d>>1) == 0 && d&(1<<(c.Len-2)) != 0
}

// Value returns the integer encoded by c.
func (c Codeword) Value() uint64 {
	var v uint64
	d := c.Digits()
	for d != 0 {
		i := bits.TrailingZeros64(d)
		if i >= len(table) {
			return 0
		}
		v += uint64(table[i])
		d &= d - 1
	}
	return v
}

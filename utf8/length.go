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

package utf8

import (
	"encoding/binary"
	"math/bits"
)

// ValidStringLength returns the number of runes in a valid UTF-8 string
func ValidStringLength(str []byte) int {
	n := len(str)
	continuation := 0
	// count continuation bytes (0b10xx_xxxx);
	// every other byte starts a rune

	// process 8 bytes at once using a SWAR algorithm
	for len(str) >= 8 {
		qword := binary.LittleEndian.Uint64(str)
		str = str[8:]

		bit7 := qword & 0x8080808080808080
		if bit7 == 0 {
			continue
		}
		bit6 := qword << 1
		comb := bit7 &^ bit6 // bit7 = 1 and bit6 = 0 => continuation byte
		continuation += bits.OnesCount64(comb)
	}
	for _, b := range str {
		if b&0b11_000000 == tx {
			continuation++
		}
	}
	return n - continuation
}

// EncodedBits returns the sum of width over the
// runes of a well-formed UTF-8 string. The caller
// is responsible for checking well-formedness.
func EncodedBits(str []byte, width func(rune) int) int {
	nbits := 0
	for len(str) > 0 {
		cp, size := decodeValid(str)
		str = str[size:]
		nbits += width(cp)
	}
	return nbits
}

// decodeValid decodes the first rune of
// a string already known to be well-formed.
func decodeValid(str []byte) (rune, int) {
	n := continuations(str[0])
	if n <= 0 || len(str) <= n {
		return rune(str[0]), 1
	}
	cp := rune(str[0] & (0xff >> (n + 2)))
	for i := 1; i <= n; i++ {
		cp = cp<<6 | rune(str[i]&maskx)
	}
	return cp, n + 1
}

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

// RuneLen returns the number of bytes AppendRune
// produces for cp, or -1 if cp is out of range.
func RuneLen(cp rune) int {
	switch {
	case cp < 0:
		return -1
	case cp <= rune1Max:
		return 1
	case cp <= rune2Max:
		return 2
	case cp <= rune3Max:
		return 3
	case cp <= MaxRune:
		return 4
	}
	return -1
}

// AppendRune appends the UTF-8 encoding of cp
// to dst in Permissive mode. See AppendRuneMode.
func AppendRune(dst []byte, cp rune) ([]byte, error) {
	return AppendRuneMode(dst, cp, Permissive)
}

// AppendRuneMode appends the UTF-8 encoding of cp
// to dst. The lead byte carries the length prefix
// and the highest-order bits of cp; continuation
// bytes follow most significant first.
//
// Code points above MaxRune fail with ErrRange.
// In Strict mode surrogates fail with ErrSurrogate.
// On error dst is returned unchanged.
func AppendRuneMode(dst []byte, cp rune, mode Mode) ([]byte, error) {
	if mode == Strict && cp >= surrogateMin && cp <= surrogateMax {
		return dst, ErrSurrogate
	}
	switch RuneLen(cp) {
	case 1:
		return append(dst, byte(cp)), nil
	case 2:
		return append(dst,
			t2|byte(cp>>6),
			tx|byte(cp)&maskx), nil
	case 3:
		return append(dst,
			t3|byte(cp>>12),
			tx|byte(cp>>6)&maskx,
			tx|byte(cp)&maskx), nil
	case 4:
		return append(dst,
			t4|byte(cp>>18),
			tx|byte(cp>>12)&maskx,
			tx|byte(cp>>6)&maskx,
			tx|byte(cp)&maskx), nil
	}
	return dst, ErrRange
}

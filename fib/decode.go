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

package fib

import "io"

// BitSource supplies a Decoder with bits,
// returning io.EOF once the stream is exhausted.
type BitSource interface {
	ReadBit() (uint, error)
}

type state uint8

const (
	out state = iota // between codewords
	in               // at least one digit seen
)

// Decoder splits a bit stream into codewords.
//
// It is a two-state machine. Every bit advances
// pos, the digit index inside the current codeword.
// A set bit adds Number(pos) to the accumulator and
// moves the machine into the in state, unless the
// bit before it was also set: then it is the
// terminator, the accumulated value is returned and
// the machine goes back to out with pos reset.
type Decoder struct {
	src   BitSource
	state state
	prev  bool   // previous bit was a set digit
	pos   int    // digit index within the current codeword
	acc   uint32 // sum of the digits seen so far
	nbits int64  // bits consumed
}

// NewDecoder returns a Decoder reading from src.
func NewDecoder(src BitSource) *Decoder {
	return &Decoder{src: src}
}

// Next returns the integer carried by the next
// codeword. At a clean end of stream (no digit
// seen since the last terminator) it returns
// io.EOF; trailing zero padding is consumed
// silently. If the stream ends inside a codeword
// the error is ErrTruncated. ErrRange is returned
// as soon as the running sum passes MaxValue.
func (d *Decoder) Next() (uint32, error) {
	for {
		b, err := d.src.ReadBit()
		if err != nil {
			if err == io.EOF && d.state == in {
				return 0, ErrTruncated
			}
			return 0, err
		}
		d.nbits++
		if b == 0 {
			d.prev = false
			if d.pos < len(table) {
				d.pos++
			}
			continue
		}
		if d.prev {
			n := d.acc
			d.state, d.prev, d.pos, d.acc = out, false, 0, 0
			return n, nil
		}
		if d.pos >= len(table) {
			return 0, ErrRange
		}
		d.acc += table[d.pos]
		if d.acc > MaxValue {
			return 0, ErrRange
		}
		d.state, d.prev = in, true
		d.pos++
	}
}

// Bits returns the number of bits consumed so far.
func (d *Decoder) Bits() int64 { return d.nbits }

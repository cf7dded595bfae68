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

// Package bitio packs and unpacks bit streams
// least-significant bit first.
//
// Bit i of the stream is bit i%8 of byte i/8.
// Values written with Writer.WriteBits land in
// the stream lowest bit first, so a codeword
// may straddle any number of byte boundaries.
package bitio

import (
	"errors"
	"io"
)

// ErrWidth is returned for a bit width
// outside [0, 64].
var ErrWidth = errors.New("bitio: bit width out of range")

// Writer accumulates bits and writes each
// completed byte to the underlying io.Writer.
// Write errors are sticky: once a write fails,
// further writes are dropped and the error is
// reported by Err and Flush.
type Writer struct {
	w     io.Writer
	err   error
	acc   uint64 // pending bits, lowest first
	nbits int    // number of pending bits in acc; always < 8 between calls
	n     int64  // bytes written to w
	buf   [8]byte
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteBits writes the lowest width bits of v.
func (w *Writer) WriteBits(v uint64, width int) {
	if w.err != nil {
		return
	}
	if width < 0 || width > 64 {
		w.err = ErrWidth
		return
	}
	if width > 56 {
		// keep nbits+width within the accumulator
		w.WriteBits(v, 32)
		w.WriteBits(v>>32, width-32)
		return
	}
	w.acc |= (v & (1<<width - 1)) << w.nbits
	w.nbits += width
	out := w.buf[:0]
	for w.nbits >= 8 {
		out = append(out, byte(w.acc))
		w.acc >>= 8
		w.nbits -= 8
	}
	w.write(out)
}

// WriteBit writes a single bit.
func (w *Writer) WriteBit(b uint) {
	w.WriteBits(uint64(b&1), 1)
}

func (w *Writer) write(p []byte) {
	if len(p) == 0 {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		w.err = err
	}
}

// Buffered returns the number of bits
// not yet written to the underlying writer.
func (w *Writer) Buffered() int { return w.nbits }

// Written returns the number of bytes
// written to the underlying writer.
func (w *Writer) Written() int64 { return w.n }

// Err returns the first write error, if any.
func (w *Writer) Err() error { return w.err }

// Flush writes the final partial byte, zero-padded
// in its high bits. A partial byte with no set bit
// is dropped rather than written.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.nbits > 0 && w.acc != 0 {
		w.buf[0] = byte(w.acc)
		w.write(w.buf[:1])
	}
	w.acc, w.nbits = 0, 0
	return w.err
}

// Reader reads bits one at a time from an
// io.ByteReader. A new byte is fetched only once
// all 8 bits of the previous one are consumed.
type Reader struct {
	r     io.ByteReader
	cur   byte
	nbits int   // unread bits left in cur
	n     int64 // bytes fetched from r
}

// NewReader returns a Reader that reads from r.
func NewReader(r io.ByteReader) *Reader {
	return &Reader{r: r}
}

// ReadBit returns the next bit of the stream.
// io.EOF is returned only at a byte boundary,
// i.e. when r itself is exhausted.
func (r *Reader) ReadBit() (uint, error) {
	if r.nbits == 0 {
		b, err := r.r.ReadByte()
		if err != nil {
			return 0, err
		}
		r.cur, r.nbits = b, 8
		r.n++
	}
	bit := uint(r.cur & 1)
	r.cur >>= 1
	r.nbits--
	return bit, nil
}

// ReadBits reads width bits and returns them
// with the first bit read in the lowest position.
// If the stream ends part-way, the bits read so
// far are returned together with
// io.ErrUnexpectedEOF.
func (r *Reader) ReadBits(width int) (uint64, error) {
	if width < 0 || width > 64 {
		return 0, ErrWidth
	}
	var v uint64
	for i := 0; i < width; i++ {
		b, err := r.ReadBit()
		if err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return v, err
		}
		v |= uint64(b) << i
	}
	return v, nil
}

// Offset returns the number of bytes
// fetched from the underlying reader.
func (r *Reader) Offset() int64 { return r.n }

// Remaining returns the number of unread
// bits left in the current byte.
func (r *Reader) Remaining() int { return r.nbits }

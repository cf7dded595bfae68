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
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/SnellerInc/fibcode"

	"github.com/dchest/siphash"
)

// arbitrary fixed key
const (
	sipk0 = 0x9f17c3fd5efd3ce4
	sipk1 = 0xdbf1ba5f07eee2c0
)

func newSip() hash.Hash64 {
	var key [16]byte
	binary.LittleEndian.PutUint64(key[:], sipk0)
	binary.LittleEndian.PutUint64(key[8:], sipk1)
	return siphash.New(key[:])
}

// roundtrip encodes and decodes the named file in
// memory and reports whether the result hashes
// the same as the input.
func roundtrip(name string, conv *fibcode.Converter) (ok bool, err error) {
	var src io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return false, err
		}
		defer f.Close()
		src = f
	}
	hin, hout := newSip(), newSip()
	var fibs bytes.Buffer
	est, err := conv.EncodeContext(ctx, &fibs, io.TeeReader(src, hin))
	if err != nil {
		return false, err
	}
	dst, err := conv.DecodeContext(ctx, hout, &fibs)
	if err != nil {
		return false, err
	}
	in, out := hin.Sum64(), hout.Sum64()
	if dashv {
		logf("%s: %d runes, %d -> %d -> %d bytes, siphash %016x -> %016x",
			name, est.Runes, est.BytesIn, est.BytesOut, dst.BytesOut, in, out)
	}
	return in == out && est.BytesIn == dst.BytesOut, nil
}

func init() {
	addApplet(applet{
		name: "roundtrip",
		help: "<file> ...",
		desc: "check that decoding the encoding of each file reproduces it",
		run: func(args []string) bool {
			if len(args) < 2 {
				return false
			}
			conv := fibcode.Converter{Strict: conf.Strict}
			failed := false
			for _, name := range args[1:] {
				ok, err := roundtrip(name, &conv)
				switch {
				case err != nil:
					fmt.Fprintf(os.Stderr, "%s: %s\n", name, err)
					failed = true
				case !ok:
					fmt.Fprintf(os.Stderr, "%s: round trip mismatch\n", name)
					failed = true
				default:
					fmt.Printf("%s: ok\n", name)
				}
			}
			if failed {
				os.Exit(1)
			}
			return true
		},
	})
}

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
	"fmt"
	"io"
	"os"

	"github.com/SnellerInc/fibcode/fib"
	"github.com/SnellerInc/fibcode/ints"
	"github.com/SnellerInc/fibcode/utf8"
)

type fileStat struct {
	runes    int
	utf8     int
	fibBits  int
	fibBytes int
}

// codewordWidth is the Fibonacci cost of a rune.
func codewordWidth(r rune) int {
	return fib.Width(uint32(r) + 1)
}

// statBytes sizes mem under the same
// well-formedness rules the encoder applies.
func statBytes(mem []byte, mode utf8.Mode) (fileStat, error) {
	r := bytes.NewReader(mem)
	for {
		_, _, err := utf8.DecodeRuneMode(r, mode)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fileStat{}, fmt.Errorf("at byte %d: %w", len(mem)-r.Len(), err)
		}
	}
	var st fileStat
	st.utf8 = len(mem)
	st.runes = utf8.ValidStringLength(mem)
	st.fibBits = utf8.EncodedBits(mem, codewordWidth)
	st.fibBytes = int(ints.ChunkCount(uint64(st.fibBits), 8))
	return st, nil
}

func statFile(name string, mode utf8.Mode) (fileStat, error) {
	f, err := os.Open(name)
	if err != nil {
		return fileStat{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fileStat{}, err
	}
	if mem, ok := mmap(f, info.Size()); ok {
		defer unmap(mem)
		return statBytes(mem, mode)
	}
	mem, err := io.ReadAll(f)
	if err != nil {
		return fileStat{}, err
	}
	return statBytes(mem, mode)
}

func init() {
	addApplet(applet{
		name: "stat",
		help: "<file.utf8> ...",
		desc: "report the size of the Fibonacci coding of UTF-8 files",
		run: func(args []string) bool {
			if len(args) < 2 {
				return false
			}
			mode := utf8.Permissive
			if conf.Strict {
				mode = utf8.Strict
			}
			for _, name := range args[1:] {
				st, err := statFile(name, mode)
				if err != nil {
					exitf("%s: %s\n", name, err)
				}
				fmt.Printf("%s: %d runes, %d UTF-8 bytes, %d Fibonacci bits (%d bytes, %.3fx)\n",
					name, st.runes, st.utf8, st.fibBits, st.fibBytes, ints.Ratio(st.fibBytes, st.utf8))
			}
			return true
		},
	})
}

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

// Package compr wraps third-party compression
// libraries behind a streaming interface selected
// by name, so that Fibonacci-coded streams can be
// stored compressed.
package compr

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Names lists the algorithms accepted by
// NewWriter and NewReader. "none" (or "")
// passes data through unchanged.
var Names = []string{"none", "zstd", "zstd-better", "s2"}

// Known reports whether name is in Names.
func Known(name string) bool {
	if name == "" {
		return true
	}
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewWriter returns a writer that compresses
// into w with the named algorithm. Close must be
// called to flush the compressed stream; it does
// not close w.
func NewWriter(name string, w io.Writer) (io.WriteCloser, error) {
	switch name {
	case "", "none":
		return nopWriteCloser{w}, nil
	case "zstd", "zstd-better":
		opts := []zstd.EOption{zstd.WithEncoderConcurrency(1)}
		if name == "zstd-better" {
			opts = append(opts, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		}
		z, err := zstd.NewWriter(w, opts...)
		if err != nil {
			return nil, err
		}
		return z, nil
	case "s2":
		return s2.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("compr: unknown compression %q", name)
	}
}

// NewReader returns a reader that decompresses
// r with the named algorithm. Closing it releases
// decoder resources; it does not close r.
func NewReader(name string, r io.Reader) (io.ReadCloser, error) {
	switch name {
	case "", "none":
		return io.NopCloser(r), nil
	case "zstd", "zstd-better":
		d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	case "s2":
		return io.NopCloser(s2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("compr: unknown compression %q", name)
	}
}

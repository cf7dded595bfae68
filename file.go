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

package fibcode

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SnellerInc/fibcode/compr"

	"github.com/google/uuid"
)

// FileOptions configures EncodeFile and DecodeFile.
type FileOptions struct {
	Converter
	// Atomic writes the output to a uniquely named
	// temporary file in the destination directory
	// and renames it over the destination only if
	// the conversion succeeds. Without Atomic the
	// destination is truncated up front and keeps
	// whatever was written before a failure.
	Atomic bool
	// Compression names the algorithm (see package
	// compr) the Fibonacci-coded file is stored with:
	// EncodeFile compresses its output and DecodeFile
	// decompresses its input. Stats always describe
	// the uncompressed Fibonacci stream.
	Compression string
}

// EncodeFile converts the UTF-8 file at inPath into
// a Fibonacci-coded file at outPath. Both files are
// closed before EncodeFile returns, on every path.
// A nil opts means the default settings.
func EncodeFile(ctx context.Context, inPath, outPath string, opts *FileOptions) (Stats, error) {
	return convertFile(ctx, inPath, outPath, opts, true)
}

// DecodeFile converts the Fibonacci-coded file at
// inPath into a UTF-8 file at outPath.
// See EncodeFile.
func DecodeFile(ctx context.Context, inPath, outPath string, opts *FileOptions) (Stats, error) {
	return convertFile(ctx, inPath, outPath, opts, false)
}

func tempName(dst string) string {
	return filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+"."+uuid.New().String()+".tmp")
}

func convertFile(ctx context.Context, inPath, outPath string, opts *FileOptions, encode bool) (st Stats, err error) {
	if opts == nil {
		opts = &FileOptions{}
	}
	if !compr.Known(opts.Compression) {
		return st, fmt.Errorf("fibcode: unknown compression %q", opts.Compression)
	}
	src, err := os.Open(inPath)
	if err != nil {
		return st, err
	}
	defer src.Close()

	target, flags := outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC
	if opts.Atomic {
		target, flags = tempName(outPath), os.O_WRONLY|os.O_CREATE|os.O_EXCL
	}
	dst, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		return st, err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if !opts.Atomic {
			return
		}
		if err == nil {
			err = os.Rename(target, outPath)
		}
		if err != nil {
			os.Remove(target)
		}
	}()

	if encode {
		var zw io.WriteCloser
		zw, err = compr.NewWriter(opts.Compression, dst)
		if err != nil {
			return st, err
		}
		st, err = opts.Converter.EncodeContext(ctx, zw, src)
		if cerr := zw.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return st, err
	}
	var zr io.ReadCloser
	zr, err = compr.NewReader(opts.Compression, src)
	if err != nil {
		return st, err
	}
	defer zr.Close()
	return opts.Converter.DecodeContext(ctx, dst, zr)
}

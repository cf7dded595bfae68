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
	"bufio"
	"flag"
	"io"
	"os"

	"github.com/SnellerInc/fibcode"
	"github.com/SnellerInc/fibcode/compr"
)

func convert(args []string) {
	var (
		dasho      string
		dashc      string
		dashstrict bool
		dashatomic bool
	)
	encode := args[0] == "encode"
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	flags.StringVar(&dasho, "o", "-", "output file (\"-\" means stdout)")
	flags.StringVar(&dashc, "c", conf.Compression, "compression of the Fibonacci stream (none, zstd, zstd-better, s2)")
	flags.BoolVar(&dashstrict, "strict", conf.Strict, "reject surrogates and overlong UTF-8 forms")
	flags.BoolVar(&dashatomic, "atomic", conf.Atomic, "write to a temporary file and rename it into place on success")
	flags.Parse(args[1:])
	args = flags.Args()
	if len(args) != 1 {
		exitf("%s takes exactly one input file\n", flags.Name())
	}
	if !compr.Known(dashc) {
		exitf("-c=%q not supported (want one of %v)\n", dashc, compr.Names)
	}
	opts := fibcode.FileOptions{
		Converter:   fibcode.Converter{Strict: dashstrict},
		Atomic:      dashatomic,
		Compression: dashc,
	}
	if dashv {
		opts.Logf = logf
	}
	in := args[0]

	var err error
	if in != "-" && dasho != "-" {
		if encode {
			_, err = fibcode.EncodeFile(ctx, in, dasho, &opts)
		} else {
			_, err = fibcode.DecodeFile(ctx, in, dasho, &opts)
		}
		if err != nil {
			exitf("%s: %s\n", flags.Name(), err)
		}
		return
	}
	if dashatomic {
		exitf("-atomic needs a file input and a file output\n")
	}
	err = convertStream(in, dasho, encode, &opts)
	if err != nil {
		exitf("%s: %s\n", flags.Name(), err)
	}
}

// convertStream handles stdin and stdout,
// where the file helpers do not apply.
func convertStream(in, out string, encode bool, opts *fibcode.FileOptions) error {
	var src io.Reader = os.Stdin
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	var dst io.WriteCloser = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		dst = f
	}
	bw := bufio.NewWriter(dst)
	var err error
	if encode {
		var zw io.WriteCloser
		zw, err = compr.NewWriter(opts.Compression, bw)
		if err == nil {
			_, err = opts.EncodeContext(ctx, zw, src)
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		}
	} else {
		var zr io.ReadCloser
		zr, err = compr.NewReader(opts.Compression, bufio.NewReader(src))
		if err == nil {
			_, err = opts.DecodeContext(ctx, bw, zr)
			zr.Close()
		}
	}
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if out != "-" {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func init() {
	addApplet(applet{
		name: "encode",
		help: "[-o output] [-c compression] [-strict] [-atomic] <input.utf8|->",
		desc: "convert UTF-8 text into a Fibonacci-coded stream",
		run: func(args []string) bool {
			if len(args) < 2 {
				return false
			}
			convert(args)
			return true
		},
	})
	addApplet(applet{
		name: "decode",
		help: "[-o output] [-c compression] [-strict] [-atomic] <input.fib|->",
		desc: "convert a Fibonacci-coded stream back into UTF-8 text",
		run: func(args []string) bool {
			if len(args) < 2 {
				return false
			}
			convert(args)
			return true
		},
	})
}

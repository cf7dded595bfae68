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
	"fmt"
	"os"

	"github.com/SnellerInc/fibcode/corpus"
)

func check(path string) int {
	m, err := corpus.Load(path)
	if err != nil {
		exitf("%s\n", err)
	}
	var report func(string, ...interface{})
	if dashv {
		report = logf
	}
	results, err := m.Run(ctx, report)
	if err != nil {
		exitf("check: %s\n", err)
	}
	failed := corpus.Failed(results)
	if !dashv {
		for i := range results {
			if !results[i].Pass {
				fmt.Fprintln(os.Stderr, results[i].String())
			}
		}
	}
	fmt.Printf("%d/%d cases passed\n", len(results)-failed, len(results))
	return failed
}

func init() {
	addApplet(applet{
		name: "check",
		help: "<manifest.yaml>",
		desc: "run a conformance corpus",
		run: func(args []string) bool {
			if len(args) != 2 {
				return false
			}
			if check(args[1]) > 0 {
				os.Exit(1)
			}
			return true
		},
	})
}

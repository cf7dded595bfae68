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
	"flag"
	"fmt"

	"github.com/SnellerInc/fibcode"
)

func version(args []string) {
	var dashbuild bool
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	flags.BoolVar(&dashbuild, "build", args[0] == "buildinfo", "print the full build information")
	flags.Parse(args[1:])
	if !dashbuild {
		if v, ok := fibcode.Version(); ok {
			fmt.Println(v)
			return
		}
		if dashv {
			logf("no module version or VCS revision recorded, falling back to build info")
		}
	}
	bi, ok := fibcode.BuildInfo()
	if !ok {
		exitf("%s: binary carries no build information\n", args[0])
	}
	fmt.Print(bi)
}

func init() {
	addApplet(applet{
		name: "version",
		help: "[-build]",
		desc: "print the version (or the full build information with -build)",
		run: func(args []string) bool {
			version(args)
			return true
		},
	})
	addApplet(applet{
		name: "buildinfo",
		desc: "print the full build information, as version -build",
		run: func(args []string) bool {
			version(args)
			return true
		},
	})
}

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
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
)

var (
	dashv      bool
	dashh      bool
	dashconfig string

	// ctx is cancelled on SIGINT
	ctx context.Context
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashh, "h", false, "show usage help")
	flag.StringVar(&dashconfig, "config", os.Getenv("FIBCODE_CONFIG"), "YAML config file (default: $FIBCODE_CONFIG)")
}

type applet struct {
	name string
	help string
	desc string
	// run returns false if the
	// arguments were malformed
	run func(args []string) bool
}

var applets []applet

func addApplet(a applet) {
	applets = append(applets, a)
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	for i := range applets {
		fmt.Fprintf(os.Stderr, "    %s [-v] [-config file] %s %s\n", os.Args[0], applets[i].name, applets[i].help)
		if applets[i].desc != "" {
			fmt.Fprintf(os.Stderr, "        %s\n", applets[i].desc)
		}
	}
	fmt.Fprintf(os.Stderr, "flag usage:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 || dashh {
		usage()
		os.Exit(1)
	}
	if dashconfig != "" {
		c, err := loadConfig(dashconfig)
		if err != nil {
			exitf("%s\n", err)
		}
		conf = *c
		if conf.Verbose {
			dashv = true
		}
	}
	var stop context.CancelFunc
	ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for i := range applets {
		if applets[i].name != args[0] {
			continue
		}
		if !applets[i].run(args) {
			exitf("usage: %s %s\n", applets[i].name, applets[i].help)
		}
		return
	}
	exitf("unknown command %q (try -h)\n", args[0])
}

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

	"github.com/SnellerInc/fibcode/compr"

	"sigs.k8s.io/yaml"
)

// config holds the defaults for the
// per-command flags; flags given on the
// command line take precedence.
type config struct {
	Strict      bool   `json:"strict,omitempty"`
	Compression string `json:"compression,omitempty"`
	Atomic      bool   `json:"atomic,omitempty"`
	Verbose     bool   `json:"verbose,omitempty"`
}

var conf config

func loadConfig(path string) (*config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := new(config)
	if err := yaml.UnmarshalStrict(buf, c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if !compr.Known(c.Compression) {
		return nil, fmt.Errorf("config %s: unknown compression %q (want one of %v)", path, c.Compression, compr.Names)
	}
	return c, nil
}

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

// Package corpus runs conformance cases for the
// Fibonacci transcoder. A manifest lists input
// files, the operation to apply and either the
// expected output file or the expectation that
// the input is rejected as malformed.
//
// Manifests are YAML (or JSON) documents:
//
//	cases:
//	  - name: ascii
//	    op: encode
//	    input: ascii.utf8
//	    expect: ascii.fib
//	  - name: truncated
//	    op: decode
//	    input: truncated_codeword.fib
//	    fail: true
//
// Relative paths are resolved against the
// directory holding the manifest.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/SnellerInc/fibcode"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"sigs.k8s.io/yaml"
)

type opFunc func(*fibcode.Converter, context.Context, io.Writer, io.Reader) (fibcode.Stats, error)

var ops = map[string]opFunc{
	"encode": (*fibcode.Converter).EncodeContext,
	"decode": (*fibcode.Converter).DecodeContext,
}

// Case is a single conformance case.
type Case struct {
	Name string `json:"name"`
	// Op is "encode" or "decode".
	Op    string `json:"op"`
	Input string `json:"input"`
	// Expect is the file holding the expected
	// output. Exactly one of Expect and Fail
	// must be set.
	Expect string `json:"expect,omitempty"`
	// Fail means the input must be rejected
	// with a format error.
	Fail bool `json:"fail,omitempty"`
	// Strict runs the case with strict
	// UTF-8 checking.
	Strict bool `json:"strict,omitempty"`
}

// Manifest is a list of cases.
type Manifest struct {
	Cases []Case `json:"cases"`

	dir string
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Decode parses and validates a manifest.
// Relative paths in the result are resolved
// against the current directory.
func Decode(buf []byte) (*Manifest, error) {
	m := new(Manifest)
	if err := yaml.UnmarshalStrict(buf, m); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if len(m.Cases) == 0 {
		return errors.New("corpus: no cases")
	}
	names := make([]string, 0, len(m.Cases))
	for i := range m.Cases {
		c := &m.Cases[i]
		if c.Name == "" {
			return fmt.Errorf("corpus: case %d has no name", i)
		}
		if _, ok := ops[c.Op]; !ok {
			valid := maps.Keys(ops)
			slices.Sort(valid)
			return fmt.Errorf("corpus: case %q: unknown op %q (want one of %s)", c.Name, c.Op, strings.Join(valid, ", "))
		}
		if c.Input == "" {
			return fmt.Errorf("corpus: case %q has no input", c.Name)
		}
		if (c.Expect == "") == !c.Fail {
			return fmt.Errorf("corpus: case %q must set exactly one of expect and fail", c.Name)
		}
		names = append(names, c.Name)
	}
	slices.Sort(names)
	for i := 1; i < len(names); i++ {
		if names[i] == names[i-1] {
			return fmt.Errorf("corpus: duplicate case %q", names[i])
		}
	}
	return nil
}

func (m *Manifest) path(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

// Digest is a BLAKE2b-256 content digest.
type Digest [blake2b.Size256]byte

func (d Digest) String() string { return fmt.Sprintf("%x", d[:]) }

func newHash() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

func sum(h hash.Hash) Digest {
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// FileDigest returns the digest of the file at path.
func FileDigest(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	h := newHash()
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, err
	}
	return sum(h), nil
}

// Result is the outcome of one case.
type Result struct {
	Case *Case
	// Got is the digest of the produced output
	// (of the partial output for failing cases).
	Got Digest
	// Want is the digest of the expected
	// output; zero for Fail cases.
	Want Digest
	// Err is the conversion error, if any.
	Err error
	// Pass reports whether the case behaved
	// as the manifest expects.
	Pass bool
}

func (r *Result) String() string {
	status := "ok"
	if !r.Pass {
		status = "FAIL"
	}
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s %s: %s", status, r.Case.Name, r.Err)
	case r.Pass:
		return fmt.Sprintf("%s %s %s", status, r.Case.Name, r.Got)
	case r.Case.Fail:
		return fmt.Sprintf("%s %s: input accepted", status, r.Case.Name)
	}
	return fmt.Sprintf("%s %s: output %s, want %s", status, r.Case.Name, r.Got, r.Want)
}

// Run executes every case in order. Case outcomes
// are reported in the results; the returned error
// is non-nil only if ctx is cancelled.
func (m *Manifest) Run(ctx context.Context, logf func(f string, args ...interface{})) ([]Result, error) {
	out := make([]Result, 0, len(m.Cases))
	for i := range m.Cases {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		r := m.run(ctx, &m.Cases[i])
		if logf != nil {
			logf("%s", r.String())
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Manifest) run(ctx context.Context, c *Case) Result {
	r := Result{Case: c}
	if c.Expect != "" {
		r.Want, r.Err = FileDigest(m.path(c.Expect))
		if r.Err != nil {
			return r
		}
	}
	f, err := os.Open(m.path(c.Input))
	if err != nil {
		r.Err = err
		return r
	}
	defer f.Close()
	h := newHash()
	conv := fibcode.Converter{Strict: c.Strict}
	_, err = ops[c.Op](&conv, ctx, h, f)
	r.Got = sum(h)
	if c.Fail {
		r.Pass = errors.Is(err, fibcode.ErrFormat)
		if r.Pass {
			err = nil
		}
		r.Err = err
		return r
	}
	r.Err = err
	r.Pass = err == nil && r.Got == r.Want
	return r
}

// Failed returns the number of results that did not pass.
func Failed(results []Result) int {
	n := 0
	for i := range results {
		if !results[i].Pass {
			n++
		}
	}
	return n
}

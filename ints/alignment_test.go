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

package ints

import "testing"

func TestChunkCount(t *testing.T) {
	for _, td := range []struct {
		bits, bytes uint64
	}{
		{0, 0}, {1, 1}, {7, 1}, {8, 1}, {9, 2}, {16, 2}, {30, 4},
	} {
		if got := ChunkCount(td.bits, 8); got != td.bytes {
			t.Errorf("ChunkCount(%d, 8) = %d, want %d", td.bits, got, td.bytes)
		}
	}
}

func TestRatio(t *testing.T) {
	if r := Ratio(3, 0); r != 0 {
		t.Errorf("Ratio(3, 0) = %v", r)
	}
	if r := Ratio(int64(3), 4); r != 0.75 {
		t.Errorf("Ratio(3, 4) = %v", r)
	}
}

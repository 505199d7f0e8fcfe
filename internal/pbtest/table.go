// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pbtest

import "sort"

const (
	notUsed = ""
)

// Strings collects the strings of a block before its table is laid out.
type Strings struct {
	tbl map[string]struct{}
}

// Table is a laid out string table.
type Table struct {
	tbl     map[string]int32
	strings []string
}

func NewStrings() *Strings {
	return &Strings{tbl: make(map[string]struct{})}
}

func (s *Strings) Add(value string) {
	s.tbl[value] = struct{}{}
}

// CalcTable lays out the collected strings in sorted order.
func (s *Strings) CalcTable() *Table {
	strings := make([]string, 0, len(s.tbl)+1)

	// Index 0 is used by pb.DenseNodes to delimit tags.  We insert an empty
	// string that will be at index 0 after the array has been sorted.
	strings = append(strings, notUsed)

	for k := range s.tbl {
		if k != notUsed {
			strings = append(strings, k)
		}
	}

	sort.Strings(strings)

	tbl := make(map[string]int32, len(strings))
	for i, k := range strings {
		tbl[k] = int32(i)
	}

	return &Table{
		tbl:     tbl,
		strings: strings,
	}
}

// IndexOf returns the index of value, which must have been added.
func (t *Table) IndexOf(value string) int32 {
	index, ok := t.tbl[value]
	if !ok {
		panic("string " + value + " is not in the table")
	}

	return index
}

// AsArray returns the table as stored in a PrimitiveBlock.
func (t *Table) AsArray() [][]byte {
	st := make([][]byte, len(t.strings))
	for i, s := range t.strings {
		st[i] = []byte(s)
	}

	return st
}

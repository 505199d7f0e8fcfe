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

package pbf

import (
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// File is a Reader over a memory-mapped PBF file.  Being seekable, it can be
// traversed any number of times.
type File struct {
	*Reader

	ra *mmap.ReaderAt
}

// Open maps the file at path into memory and returns a Reader over it.
func Open(path string, opts ...ReaderOption) (*File, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to map %s: %w", path, err)
	}

	return &File{
		Reader: NewReader(io.NewSectionReader(ra, 0, int64(ra.Len())), opts...),
		ra:     ra,
	}, nil
}

// Size is the size of the file in bytes.
func (f *File) Size() int64 {
	return int64(f.ra.Len())
}

// Close unmaps the file.  Entities already decoded stay valid.
func (f *File) Close() error {
	return f.ra.Close()
}

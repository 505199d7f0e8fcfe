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

package cli

import (
	"fmt"
	"io"
	"os"

	pb "gopkg.in/cheggaaa/pb.v1"
)

// progressBar reads a file through a ProgressBar.  Closing it closes the
// file and clears the terminal line of progress output.
type progressBar struct {
	f   *os.File
	r   io.Reader
	bar *pb.ProgressBar
}

// WrapInputFile returns f with an associated ProgressBar that tracks the
// bytes read relative to the size of the file.  Seeking moves the bar, so a
// second pass over the file restarts it.
func WrapInputFile(f *os.File) (io.ReadSeekCloser, error) {
	if f == os.Stdin {
		// don't bother wrapping stdin
		return os.Stdin, nil
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	bar := pb.New64(fi.Size()).SetUnits(pb.U_BYTES_DEC).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()

	return &progressBar{
		f:   f,
		r:   bar.NewProxyReader(f),
		bar: bar,
	}, nil
}

func (p *progressBar) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *progressBar) Seek(offset int64, whence int) (int64, error) {
	off, err := p.f.Seek(offset, whence)
	if err != nil {
		return off, err
	}

	p.bar.Set64(off)

	return off, nil
}

func (p *progressBar) Close() error {
	// make sure newline is not printed by Finish()
	p.bar.Output = nil
	p.bar.NotPrint = true

	p.bar.Finish()

	fmt.Fprintf(os.Stderr, "\033[2K\r") // clear status bar

	return p.f.Close()
}

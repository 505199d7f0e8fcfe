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
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/pbf/v3"
)

// Input is an open PBF file.
type Input struct {
	*pbf.Reader

	closer io.Closer
}

// Close releases the file.
func (in *Input) Close() error {
	return in.closer.Close()
}

// ReaderOptions translates the persistent flags of cmd.
func ReaderOptions(cmd *cobra.Command) []pbf.ReaderOption {
	flags := cmd.Flags()

	opts := []pbf.ReaderOption{pbf.WithLogger(slog.Default())}

	if skip, _ := flags.GetBool("skip-errors"); skip {
		opts = append(opts, pbf.WithErrorHandler(pbf.SkipOnError))
	}

	if all, _ := flags.GetBool("all-codecs"); all {
		opts = append(opts, pbf.WithExtendedCodecs())
	}

	return opts
}

// Open opens path the way the flags of cmd ask for.  A progress bar on
// stderr tracks reads when progress is set; mapped files have none.
func Open(cmd *cobra.Command, path string, progress bool) (*Input, error) {
	opts := ReaderOptions(cmd)

	if mapped, _ := cmd.Flags().GetBool("mmap"); mapped {
		f, err := pbf.Open(path, opts...)
		if err != nil {
			return nil, err
		}

		slog.Debug("mapped input", "path", path, "size", f.Size())

		return &Input{Reader: f.Reader, closer: f}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}

	var in io.ReadSeekCloser = f
	if progress {
		if in, err = WrapInputFile(f); err != nil {
			f.Close()

			return nil, err
		}
	}

	return &Input{Reader: pbf.NewReader(in, opts...), closer: in}, nil
}

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

// Package cat implements the pbf cat command, which writes every entity of
// a file as a line of OSM JSON.
package cat

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"m4o.io/pbf/v3"
	"m4o.io/pbf/v3/cmd/pbf/cli"
	"m4o.io/pbf/v3/model"
	"m4o.io/pbf/v3/osmconv"
)

var output *os.File

func init() {
	cli.RootCmd.AddCommand(catCmd)

	flags := catCmd.Flags()
	flags.VarP(cli.NewOutputValue(os.Stdout, &output, "file"), "output", "o", "file to write to")
	flags.Uint16P("cpu", "c", uint16(runtime.GOMAXPROCS(-1)), "number of CPUs to use for decoding")
}

var catCmd = &cobra.Command{
	Use:   "cat <OSM file>",
	Short: "Write the entities of an OSM file as OSM JSON",
	Long:  "Write the entities of an OSM file as OSM JSON, one object per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ncpu, err := cmd.Flags().GetUint16("cpu")
		if err != nil {
			return err
		}

		in, err := cli.Open(cmd, args[0], false)
		if err != nil {
			return err
		}
		defer in.Close()

		err = runCat(cmd.Context(), in.Reader, output, int(ncpu))

		if output != os.Stdout {
			if cerr := output.Close(); err == nil {
				err = cerr
			}
		}

		return err
	},
}

func runCat(ctx context.Context, r *pbf.Reader, w io.Writer, ncpu int) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	err := r.ForEachParallel(ctx, ncpu, func(e model.Entity) error {
		o, err := osmconv.Entity(e)
		if err != nil {
			return err
		}

		return enc.Encode(o)
	})
	if err != nil {
		return err
	}

	return bw.Flush()
}

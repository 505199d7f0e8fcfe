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

// Package cli holds the root command and the plumbing shared by the pbf
// subcommands.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RootCmd is the pbf command.  Subcommands register themselves in init.
var RootCmd = &cobra.Command{
	Use:           "pbf",
	Short:         "Inspect OpenStreetMap PBF files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}

		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
	},
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "log debug output")

	AddInputFlags(flags)
}

// AddInputFlags adds the flags read by Open and ReaderOptions.
func AddInputFlags(flags *pflag.FlagSet) {
	flags.Bool("mmap", false, "memory-map the input file")
	flags.Bool("skip-errors", false, "skip the rest of a blob that fails to decode")
	flags.BoolP("all-codecs", "x", false, "accept raw, lzma, lz4 and zstd blobs")
}

// Execute runs the root command and exits non-zero on failure.  An
// interrupt cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		slog.Error("pbf failed", "error", err)
		os.Exit(1)
	}
}

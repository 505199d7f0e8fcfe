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

// Package info implements the pbf info command.
package info

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"m4o.io/pbf/v3"
	"m4o.io/pbf/v3/cmd/pbf/cli"
	"m4o.io/pbf/v3/model"
)

var out io.Writer = os.Stdout

var errNoHeader = errors.New("no OSMHeader blob")

// supported lists the required features this tool can honor.
var supported = []string{
	model.FeatureOsmSchema,
	model.FeatureDenseNodes,
	model.FeatureHistoricalInformation,
}

type extendedHeader struct {
	model.Header

	NodeCount     int64              `json:"node_count"`
	WayCount      int64              `json:"way_count"`
	RelationCount int64              `json:"relation_count"`
	NodeBounds    *model.BoundingBox `json:"node_bounds,omitempty"`
}

func init() {
	cli.RootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.BoolP("json", "j", false, "format information in JSON")
	flags.Uint16P("cpu", "c", uint16(runtime.GOMAXPROCS(-1)), "number of CPUs to use for scanning")
	flags.BoolP("extended", "e", false, "provide extended information (scans entire file)")
}

var infoCmd = &cobra.Command{
	Use:   "info <OSM file>",
	Short: "Print information about an OSM file",
	Long:  "Print information about an OSM file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		ncpu, err := flags.GetUint16("cpu")
		if err != nil {
			return err
		}

		extended, err := flags.GetBool("extended")
		if err != nil {
			return err
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			return err
		}

		in, err := cli.Open(cmd, args[0], extended && !jsonfmt)
		if err != nil {
			return err
		}

		info, err := runInfo(cmd.Context(), in.Reader, int(ncpu), extended)

		if cerr := in.Close(); err == nil {
			err = cerr
		}

		if err != nil {
			return err
		}

		if jsonfmt {
			return renderJSON(info, extended)
		}

		renderTxt(info, extended)

		return nil
	},
}

func runInfo(ctx context.Context, r *pbf.Reader, ncpu int, extended bool) (*extendedHeader, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	if missing := hdr.Unsupported(supported...); len(missing) > 0 {
		slog.Warn("file requires unsupported features", "features", missing)
	}

	info := &extendedHeader{Header: hdr}

	if !extended {
		return info, nil
	}

	bounds := model.InitialBoundingBox()

	err = r.ForEachParallel(ctx, ncpu, func(e model.Entity) error {
		switch v := e.(type) {
		case *model.Node:
			info.NodeCount++
			bounds.ExpandWithLatLng(v.Lat(), v.Lon())
		case *model.Way:
			info.WayCount++
		case *model.Relation:
			info.RelationCount++
		default:
			return fmt.Errorf("unknown type %T", v)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !bounds.IsEmpty() {
		info.NodeBounds = bounds
	}

	return info, nil
}

// readHeader decodes the first OSMHeader blob of r.
func readHeader(r *pbf.Reader) (model.Header, error) {
	for blob, err := range r.Blobs().All() {
		if err != nil {
			return model.Header{}, err
		}

		if blob.Type() == pbf.BlobOSMHeader {
			return blob.DecodeHeader()
		}

		slog.Debug("skipping blob before header", "blob", blob.Index(), "type", blob.TypeName())
	}

	return model.Header{}, errNoHeader
}

func renderJSON(info *extendedHeader, extended bool) error {
	// marshall the smallest struct needed
	var v any
	if extended {
		v = info
	} else {
		v = info.Header
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, string(b))

	return nil
}

func renderTxt(info *extendedHeader, extended bool) {
	fmt.Fprintf(out, "BoundingBox: %s\n", bbox(info.BoundingBox))
	fmt.Fprintf(out, "Span: %s\n", span(info.BoundingBox))
	fmt.Fprintf(out, "RequiredFeatures: %s\n", strings.Join(info.RequiredFeatures, ", "))
	fmt.Fprintf(out, "OptionalFeatures: %s\n", strings.Join(info.OptionalFeatures, ", "))
	fmt.Fprintf(out, "WritingProgram: %s\n", info.WritingProgram)
	fmt.Fprintf(out, "Source: %s\n", info.Source)
	fmt.Fprintf(out, "OsmosisReplicationTimestamp: %s\n", info.OsmosisReplicationTimestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "OsmosisReplicationSequenceNumber: %d\n", info.OsmosisReplicationSequenceNumber)
	fmt.Fprintf(out, "OsmosisReplicationBaseURL: %s\n", info.OsmosisReplicationBaseURL)

	if extended {
		fmt.Fprintf(out, "NodeCount: %s\n", humanize.Comma(info.NodeCount))
		fmt.Fprintf(out, "WayCount: %s\n", humanize.Comma(info.WayCount))
		fmt.Fprintf(out, "RelationCount: %s\n", humanize.Comma(info.RelationCount))
		fmt.Fprintf(out, "NodeBounds: %s\n", bbox(info.NodeBounds))
		fmt.Fprintf(out, "NodeSpan: %s\n", span(info.NodeBounds))
	}
}

func bbox(b *model.BoundingBox) string {
	if b == nil {
		return "none"
	}

	return b.String()
}

// span renders the angular width and height of b in degrees.
func span(b *model.BoundingBox) string {
	if b == nil {
		return "none"
	}

	width, height := b.Span()

	return fmt.Sprintf("%s\u00B0 x %s\u00B0", humanize.Ftoa(float64(width.Degrees())), humanize.Ftoa(float64(height.Degrees())))
}

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
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"m4o.io/pbf/v3/internal/pb"
	"m4o.io/pbf/v3/internal/pbtest"
	"m4o.io/pbf/v3/model"
)

type writeFunc func(w io.Writer) error

// osmStream concatenates the frames written by writes.
func osmStream(t testing.TB, writes ...writeFunc) []byte {
	t.Helper()

	var buf bytes.Buffer

	for _, w := range writes {
		require.NoError(t, w(&buf))
	}

	return buf.Bytes()
}

func header(kind pbtest.Kind) writeFunc {
	return func(w io.Writer) error {
		return pbtest.WriteHeader(w, model.Header{
			RequiredFeatures: []string{model.FeatureOsmSchema, model.FeatureDenseNodes},
			WritingProgram:   "pbftest",
		}, kind)
	}
}

func entities(dense bool, kind pbtest.Kind, es ...model.Entity) writeFunc {
	return func(w io.Writer) error {
		return pbtest.WriteEntities(w, es, dense, kind)
	}
}

func block(msg proto.Message, kind pbtest.Kind) writeFunc {
	return func(w io.Writer) error {
		return pbtest.WriteBlock(w, OSMDataType, msg, kind)
	}
}

// rawBlock writes an already encoded, possibly invalid, primitive block.
func rawBlock(b []byte, kind pbtest.Kind) writeFunc {
	return func(w io.Writer) error {
		return pbtest.WriteRawBlock(w, OSMDataType, b, kind)
	}
}

func frame(typ string, blob *pb.Blob) writeFunc {
	return func(w io.Writer) error {
		b, err := proto.Marshal(blob)
		if err != nil {
			return err
		}

		return pbtest.WriteFrame(w, typ, b)
	}
}

func table(strs ...string) *pb.StringTable {
	st := make([][]byte, len(strs))
	for i, s := range strs {
		st[i] = []byte(s)
	}

	return &pb.StringTable{S: st}
}

// primitive wraps groups into a block with the default granularities.
func primitive(st *pb.StringTable, groups ...*pb.PrimitiveGroup) *pb.PrimitiveBlock {
	return &pb.PrimitiveBlock{
		Stringtable:    st,
		Primitivegroup: groups,
	}
}

// pbNode builds a node in its explicit form with every required field set.
func pbNode(id, lat, lon int64) *pb.Node {
	return &pb.Node{Id: proto.Int64(id), Lat: proto.Int64(lat), Lon: proto.Int64(lon)}
}

func collect(t *testing.T, r *Reader) []model.Entity {
	t.Helper()

	var out []model.Entity

	require.NoError(t, r.ForEach(context.Background(), func(e model.Entity) error {
		out = append(out, e)

		return nil
	}))

	return out
}

// onlyReader hides every method of r but Read.
type onlyReader struct {
	io.Reader
}

var stamp = time.Date(2024, time.March, 9, 17, 45, 12, 0, time.UTC)

func sampleEntities() []model.Entity {
	return []model.Entity{
		&model.Node{
			ID:      1,
			NanoLat: 51_500_000_000,
			NanoLon: -120_000_000,
			Info:    &model.Info{Version: 2, UID: 7, Timestamp: stamp, Changeset: 100, User: "alice", Visible: true},
		},
		&model.Node{
			ID:      5,
			Tags:    model.Tags{{Key: "amenity", Value: "cafe"}, {Key: "name", Value: "Chez Nous"}},
			NanoLat: 51_500_100_000,
			NanoLon: -119_999_900,
			Info:    &model.Info{Version: 1, UID: 9, Timestamp: stamp.Add(time.Hour), Changeset: 104, User: "bob", Visible: true},
		},
		&model.Way{
			ID:      10,
			Tags:    model.Tags{{Key: "highway", Value: "residential"}},
			NodeIDs: []model.ID{1, 5, 3},
			Info:    &model.Info{Version: 4, UID: 7, Timestamp: stamp, Changeset: 101, User: "alice", Visible: true},
		},
		&model.Relation{
			ID:   20,
			Tags: model.Tags{{Key: "type", Value: "route"}},
			Members: []model.Member{
				{ID: 1, Type: model.NODE, Role: "stop"},
				{ID: 10, Type: model.WAY, Role: ""},
				{ID: 21, Type: model.RELATION, Role: "sub"},
			},
		},
	}
}

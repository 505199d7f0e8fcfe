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
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"m4o.io/pbf/v3/internal/pb"
	"m4o.io/pbf/v3/internal/pbtest"
	"m4o.io/pbf/v3/model"
)

func TestReaderSingleDenseNode(t *testing.T) {
	data := osmStream(t,
		header(pbtest.Zlib),
		block(primitive(table(""), &pb.PrimitiveGroup{
			Dense: &pb.DenseNodes{Id: []int64{1}, Lat: []int64{1}, Lon: []int64{1}},
		}), pbtest.Zlib),
	)

	var calls []model.Entity

	err := NewReader(bytes.NewReader(data)).ForEach(context.Background(), func(e model.Entity) error {
		calls = append(calls, e)

		return nil
	})
	require.NoError(t, err)
	require.Len(t, calls, 1)

	n, ok := calls[0].(*model.Node)
	require.True(t, ok)
	assert.Equal(t, model.ID(1), n.ID)
	assert.Equal(t, int64(100), n.NanoLat)
	assert.Equal(t, int64(100), n.NanoLon)
	assert.Empty(t, n.Tags)
}

func TestReaderIdempotent(t *testing.T) {
	data := osmStream(t,
		header(pbtest.Zlib),
		entities(true, pbtest.Zlib, sampleEntities()...),
		entities(false, pbtest.Zlib, sampleEntities()...),
	)

	first := collect(t, NewReader(bytes.NewReader(data)))
	second := collect(t, NewReader(bytes.NewReader(data)))

	assert.Len(t, first, 8)
	assert.Equal(t, first, second)
}

func TestReaderRestart(t *testing.T) {
	data := osmStream(t, header(pbtest.Zlib), entities(true, pbtest.Zlib, sampleEntities()...))

	r := NewReader(bytes.NewReader(data))
	assert.Equal(t, collect(t, r), collect(t, r))

	once := NewReader(onlyReader{bytes.NewReader(data)})
	assert.Len(t, collect(t, once), 4)

	err := once.ForEach(context.Background(), func(model.Entity) error { return nil })
	assert.ErrorIs(t, err, ErrNotRestartable)
}

func TestReaderOrder(t *testing.T) {
	grp := &pb.PrimitiveGroup{
		Relations: []*pb.Relation{{Id: proto.Int64(4)}},
		Ways:      []*pb.Way{{Id: proto.Int64(3)}},
		Nodes:     []*pb.Node{pbNode(2, 0, 0)},
		Dense:     &pb.DenseNodes{Id: []int64{1}, Lat: []int64{0}, Lon: []int64{0}},
	}

	data := osmStream(t, block(primitive(table(""), grp), pbtest.Zlib))

	var types []model.EntityType

	for _, e := range collect(t, NewReader(bytes.NewReader(data))) {
		types = append(types, e.GetType())
	}

	assert.Equal(t, []model.EntityType{model.NODE, model.NODE, model.WAY, model.RELATION}, types)
}

// corruptStream holds a blob whose second way has a bad tag, followed by a
// healthy blob.
func corruptStream(t *testing.T) []byte {
	t.Helper()

	bad := primitive(table("", "highway"), &pb.PrimitiveGroup{
		Ways: []*pb.Way{
			{Id: proto.Int64(1)},
			{Id: proto.Int64(2), Keys: []uint32{1}, Vals: []uint32{7}},
			{Id: proto.Int64(3)},
		},
	})

	return osmStream(t,
		header(pbtest.Zlib),
		block(bad, pbtest.Zlib),
		entities(true, pbtest.Zlib, &model.Node{ID: 10}),
	)
}

func ids(es []model.Entity) []model.ID {
	out := make([]model.ID, len(es))
	for i, e := range es {
		out[i] = e.GetID()
	}

	return out
}

func TestReaderAbortsByDefault(t *testing.T) {
	var seen []model.Entity

	err := NewReader(bytes.NewReader(corruptStream(t))).ForEach(context.Background(), func(e model.Entity) error {
		seen = append(seen, e)

		return nil
	})

	assert.ErrorIs(t, err, ErrStringIndexOutOfRange)
	assert.Equal(t, []model.ID{1}, ids(seen))
}

func TestReaderSkipsRestOfBlob(t *testing.T) {
	var logs bytes.Buffer

	r := NewReader(bytes.NewReader(corruptStream(t)),
		WithErrorHandler(SkipOnError),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	assert.Equal(t, []model.ID{1, 10}, ids(collect(t, r)))
	assert.Contains(t, logs.String(), "skipping rest of blob")
	assert.Contains(t, logs.String(), "blob=1")
}

func TestReaderSkipsUndecodableBlob(t *testing.T) {
	data := osmStream(t,
		entities(true, pbtest.Raw, &model.Node{ID: 1}),
		entities(true, pbtest.Zlib, &model.Node{ID: 2}),
	)

	var handled []error

	r := NewReader(bytes.NewReader(data), WithErrorHandler(func(err error) error {
		handled = append(handled, err)

		return nil
	}))

	assert.Equal(t, []model.ID{2}, ids(collect(t, r)))
	require.Len(t, handled, 1)
	assert.ErrorIs(t, handled[0], ErrUnsupportedCompression)
}

func TestReaderFramingErrorEndsStream(t *testing.T) {
	data := osmStream(t, entities(true, pbtest.Zlib, &model.Node{ID: 1}))
	data = append(data, 0, 0, 0)

	r := NewReader(bytes.NewReader(data), WithErrorHandler(SkipOnError))
	assert.Equal(t, []model.ID{1}, ids(collect(t, r)))

	err := NewReader(bytes.NewReader(data)).ForEach(context.Background(), func(model.Entity) error { return nil })
	assert.ErrorIs(t, err, ErrFramingRead)
}

func TestReaderCallbackError(t *testing.T) {
	errStop := errors.New("stop")

	data := osmStream(t, entities(true, pbtest.Zlib, sampleEntities()...))

	var calls int

	err := NewReader(bytes.NewReader(data), WithErrorHandler(SkipOnError)).
		ForEach(context.Background(), func(model.Entity) error {
			calls++

			return errStop
		})

	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, calls)
}

func TestReaderCancelled(t *testing.T) {
	data := osmStream(t, entities(true, pbtest.Zlib, sampleEntities()...))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewReader(bytes.NewReader(data)).ForEach(ctx, func(model.Entity) error {
		t.Fatal("unexpected entity")

		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func manyBlobs(t testing.TB, n int) []byte {
	t.Helper()

	writes := []writeFunc{header(pbtest.Zlib)}

	for i := range n {
		base := model.ID(i * 100)
		writes = append(writes, entities(i%2 == 0, pbtest.Zlib,
			&model.Node{ID: base + 1, NanoLat: 100, NanoLon: 200},
			&model.Node{ID: base + 2, Tags: model.Tags{{Key: "k", Value: "v"}}},
			&model.Way{ID: base + 3, NodeIDs: []model.ID{base + 1, base + 2}},
		))
	}

	return osmStream(t, writes...)
}

func TestReaderForEachParallel(t *testing.T) {
	data := manyBlobs(t, 25)

	want := collect(t, NewReader(bytes.NewReader(data)))
	require.Len(t, want, 75)

	for _, n := range []int{0, 1, 4} {
		var got []model.Entity

		err := NewReader(bytes.NewReader(data)).ForEachParallel(context.Background(), n, func(e model.Entity) error {
			got = append(got, e)

			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers %d", n)
	}
}

func TestReaderForEachParallelErrors(t *testing.T) {
	var seen []model.Entity

	err := NewReader(bytes.NewReader(corruptStream(t))).ForEachParallel(context.Background(), 2, func(e model.Entity) error {
		seen = append(seen, e)

		return nil
	})
	assert.ErrorIs(t, err, ErrStringIndexOutOfRange)
	assert.Equal(t, []model.ID{1}, ids(seen))

	seen = nil

	err = NewReader(bytes.NewReader(corruptStream(t)), WithErrorHandler(SkipOnError)).
		ForEachParallel(context.Background(), 2, func(e model.Entity) error {
			seen = append(seen, e)

			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []model.ID{1, 10}, ids(seen))
}

func TestReaderForEachParallelCallbackError(t *testing.T) {
	errStop := errors.New("stop")

	r := NewReader(bytes.NewReader(manyBlobs(t, 10)))

	var calls int

	err := r.ForEachParallel(context.Background(), 3, func(model.Entity) error {
		calls++
		if calls == 5 {
			return errStop
		}

		return nil
	})
	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 5, calls)

	// the reader can be used again once ForEachParallel returns
	assert.Len(t, collect(t, r), 30)
}

func TestOpen(t *testing.T) {
	data := manyBlobs(t, 3)

	path := filepath.Join(t.TempDir(), "sample.osm.pbf")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	f, err := Open(path)
	require.NoError(t, err)

	defer f.Close()

	assert.Equal(t, int64(len(data)), f.Size())

	first := collect(t, f.Reader)
	assert.Len(t, first, 9)
	assert.Equal(t, first, collect(t, f.Reader))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.osm.pbf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

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
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"m4o.io/pbf/v3/internal/pb"
	"m4o.io/pbf/v3/internal/pbtest"
	"m4o.io/pbf/v3/model"
)

// firstBlob frames data and returns its first blob.
func firstBlob(t *testing.T, data []byte, opts ...ReaderOption) *Blob {
	t.Helper()

	blob, err := NewBlobReader(bytes.NewReader(data), opts...).Next()
	require.NoError(t, err)

	return blob
}

func TestBlobDecodeHeader(t *testing.T) {
	hdr := model.Header{
		BoundingBox: &model.BoundingBox{
			Left:   -0.5,
			Right:  1.25,
			Top:    51.75,
			Bottom: 50.5,
		},
		RequiredFeatures:                 []string{model.FeatureOsmSchema, model.FeatureDenseNodes},
		OptionalFeatures:                 []string{"Sort.Type_then_ID"},
		WritingProgram:                   "pbftest",
		Source:                           "survey",
		OsmosisReplicationTimestamp:      time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
		OsmosisReplicationSequenceNumber: 4242,
		OsmosisReplicationBaseURL:        "https://example.org/replication",
	}

	data := osmStream(t, func(w io.Writer) error {
		return pbtest.WriteHeader(w, hdr, pbtest.Zlib)
	})

	blob := firstBlob(t, data)
	assert.Equal(t, BlobOSMHeader, blob.Type())
	assert.Equal(t, Zlib, blob.Compression())

	blk, err := blob.Decode()
	require.NoError(t, err)

	hb, ok := blk.(HeaderBlock)
	require.True(t, ok)

	assert.Equal(t, hdr.RequiredFeatures, hb.RequiredFeatures)
	assert.Equal(t, hdr.OptionalFeatures, hb.OptionalFeatures)
	assert.Equal(t, hdr.WritingProgram, hb.WritingProgram)
	assert.Equal(t, hdr.Source, hb.Source)
	assert.Equal(t, hdr.OsmosisReplicationTimestamp, hb.OsmosisReplicationTimestamp)
	assert.Equal(t, hdr.OsmosisReplicationSequenceNumber, hb.OsmosisReplicationSequenceNumber)
	assert.Equal(t, hdr.OsmosisReplicationBaseURL, hb.OsmosisReplicationBaseURL)
	assert.True(t, hdr.BoundingBox.EqualWithin(hb.BoundingBox, model.E7))
	assert.Empty(t, hb.Unsupported(model.FeatureOsmSchema, model.FeatureDenseNodes))
}

func TestBlobDecodePrimitive(t *testing.T) {
	data := osmStream(t, entities(false, pbtest.Zlib, sampleEntities()...))

	blk, err := firstBlob(t, data).Decode()
	require.NoError(t, err)

	prim, ok := blk.(*PrimitiveBlock)
	require.True(t, ok)

	var got []model.Entity

	for e, err := range prim.Entities() {
		require.NoError(t, err)

		got = append(got, e)
	}

	assert.Equal(t, sampleEntities(), got)
}

func TestBlobDecodeUnknown(t *testing.T) {
	data := osmStream(t, frame("OSMIndex", pbtest.NewBlob(pbtest.Lzma, []byte("opaque"))))

	blob := firstBlob(t, data)
	assert.Equal(t, BlobUnknown, blob.Type())
	assert.Equal(t, "OSMIndex", blob.TypeName())

	blk, err := blob.Decode()
	require.NoError(t, err)
	assert.Equal(t, UnknownBlock{Type: "OSMIndex"}, blk)
}

func TestBlobDecodeRawUnsupported(t *testing.T) {
	data := osmStream(t, entities(true, pbtest.Raw, sampleEntities()...))

	_, err := firstBlob(t, data).Decode()
	assert.ErrorIs(t, err, ErrUnsupportedCompression)
	assert.ErrorContains(t, err, "raw")
}

func TestBlobDecodeDefaultCodecs(t *testing.T) {
	for _, kind := range []pbtest.Kind{pbtest.Lzma, pbtest.Lz4, pbtest.Zstd} {
		data := osmStream(t, entities(true, kind, sampleEntities()...))

		_, err := firstBlob(t, data).Decode()
		assert.ErrorIs(t, err, ErrUnsupportedCompression, Compression(kind).String())
	}
}

func TestBlobDecodeExtendedCodecs(t *testing.T) {
	for _, kind := range []pbtest.Kind{pbtest.Raw, pbtest.Zlib, pbtest.Lzma, pbtest.Lz4, pbtest.Zstd} {
		t.Run(Compression(kind).String(), func(t *testing.T) {
			data := osmStream(t, entities(true, kind, sampleEntities()...))

			blob := firstBlob(t, data, WithExtendedCodecs())
			assert.Equal(t, Compression(kind), blob.Compression())

			prim, err := blob.DecodePrimitive()
			require.NoError(t, err)

			var got []model.Entity

			for e, err := range prim.Entities() {
				require.NoError(t, err)

				got = append(got, e)
			}

			assert.Equal(t, sampleEntities(), got)
		})
	}
}

func TestBlobCustomDecompressor(t *testing.T) {
	data := osmStream(t, entities(true, pbtest.Raw, sampleEntities()...))

	var called bool

	raw := func(payload []byte) (io.Reader, error) {
		called = true

		return bytes.NewReader(payload), nil
	}

	_, err := firstBlob(t, data, WithDecompressor(Raw, raw)).DecodePrimitive()
	require.NoError(t, err)
	assert.True(t, called)

	_, err = firstBlob(t, data, WithExtendedCodecs(), WithDecompressor(Raw, nil)).DecodePrimitive()
	assert.ErrorIs(t, err, ErrUnsupportedCompression)
}

func TestBlobMissingPayload(t *testing.T) {
	data := osmStream(t, frame(OSMDataType, &pb.Blob{}))

	_, err := firstBlob(t, data).Decode()
	assert.ErrorIs(t, err, ErrMissingBlobPayload)
}

func TestBlobCorruptZlib(t *testing.T) {
	data := osmStream(t, frame(OSMDataType, pbtest.NewBlob(pbtest.Zlib, []byte("definitely not zlib"))))

	_, err := firstBlob(t, data).Decode()
	assert.ErrorIs(t, err, ErrDecompress)
}

func TestBlobRawSizeMismatch(t *testing.T) {
	payload, err := proto.Marshal(pbtest.EncodeBlock(sampleEntities(), true))
	require.NoError(t, err)

	blob := pbtest.NewBlob(pbtest.Raw, payload)
	blob.RawSize = proto.Int32(int32(len(payload) + 1))

	data := osmStream(t, frame(OSMDataType, blob))

	_, err = firstBlob(t, data, WithExtendedCodecs()).Decode()
	assert.ErrorIs(t, err, ErrDecompress)
}

func TestBlobInflatesBeyondLimit(t *testing.T) {
	big := pbtest.EncodeBlock([]model.Entity{
		&model.Way{ID: 1, Tags: model.Tags{{Key: "note", Value: strings.Repeat("x", 4096)}}},
	}, false)

	data := osmStream(t, block(big, pbtest.Zlib))

	_, err := firstBlob(t, data, WithMaxBlobSize(1024)).Decode()
	assert.ErrorIs(t, err, ErrDecompress)
	assert.ErrorIs(t, err, ErrOversizedBlob)
}

func TestBlobSchemaDecodeFailure(t *testing.T) {
	data := osmStream(t, rawBlock([]byte{0xff}, pbtest.Zlib))

	_, err := firstBlob(t, data).Decode()
	assert.ErrorIs(t, err, ErrSchemaDecode)
}

func TestBlobMissingStringTable(t *testing.T) {
	// a primitive block whose only field is granularity
	data := osmStream(t, rawBlock([]byte{0x88, 0x01, 0x64}, pbtest.Zlib))

	_, err := firstBlob(t, data).Decode()
	assert.ErrorIs(t, err, ErrSchemaDecode)
}

func TestBlobDecodeWrongType(t *testing.T) {
	blob := firstBlob(t, osmStream(t, header(pbtest.Zlib)))

	_, err := blob.DecodePrimitive()
	assert.ErrorIs(t, err, ErrSchemaDecode)
}

func TestBlobDecodeTwice(t *testing.T) {
	blob := firstBlob(t, osmStream(t, entities(true, pbtest.Zlib, sampleEntities()...)))

	first, err := blob.DecodePrimitive()
	require.NoError(t, err)

	second, err := blob.DecodePrimitive()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.True(t, proto.Equal(first.blk, second.blk))
}

func TestCompressionString(t *testing.T) {
	assert.Equal(t, "zlib", Zlib.String())
	assert.Equal(t, "bzip2", Bzip2.String())
	assert.Equal(t, "Compression(42)", Compression(42).String())
	assert.Equal(t, "OSMData", BlobOSMData.String())
	assert.Equal(t, "Unknown", BlobUnknown.String())
}

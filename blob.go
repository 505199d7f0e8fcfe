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

	"google.golang.org/protobuf/proto"

	"m4o.io/pbf/v3/internal/pb"
	"m4o.io/pbf/v3/model"
)

// Blob type strings defined by the file format.
const (
	OSMHeaderType = "OSMHeader"
	OSMDataType   = "OSMData"
)

// BlobType classifies a blob by the type string of its header.
type BlobType int

const (
	// BlobUnknown is any blob type other than OSMHeader and OSMData.
	BlobUnknown BlobType = iota

	// BlobOSMHeader holds the file header.
	BlobOSMHeader

	// BlobOSMData holds a primitive block of entities.
	BlobOSMData
)

func (t BlobType) String() string {
	switch t {
	case BlobOSMHeader:
		return OSMHeaderType
	case BlobOSMData:
		return OSMDataType
	default:
		return "Unknown"
	}
}

// Blob is one framed entry of a PBF stream.  It owns its payload, which is
// only decompressed and decoded on demand, and may be decoded any number of
// times, from any goroutine.
type Blob struct {
	index  int
	header *pb.BlobHeader
	blob   *pb.Blob

	codecs      map[Compression]Decompressor
	maxBlobSize int
}

// Index is the position of the blob in its stream, starting at 0.
func (b *Blob) Index() int {
	return b.index
}

// Type classifies the blob.
func (b *Blob) Type() BlobType {
	switch b.header.GetType() {
	case OSMHeaderType:
		return BlobOSMHeader
	case OSMDataType:
		return BlobOSMData
	default:
		return BlobUnknown
	}
}

// TypeName returns the type string of the blob header verbatim.
func (b *Blob) TypeName() string {
	return b.header.GetType()
}

// Compression returns the codec of the payload.  It is meaningless for a
// blob without payload.
func (b *Blob) Compression() Compression {
	c, _, _ := payloadOf(b.blob)

	return c
}

// Size is the size of the encoded blob as framed.
func (b *Blob) Size() int {
	return int(b.header.GetDatasize())
}

// Decode decompresses and decodes the blob.  OSMHeader blobs give a
// HeaderBlock, OSMData blobs a *PrimitiveBlock.  Other blobs give an
// UnknownBlock without their payload being looked at.
func (b *Blob) Decode() (Block, error) {
	switch b.Type() {
	case BlobOSMHeader:
		h, err := b.DecodeHeader()
		if err != nil {
			return nil, err
		}

		return HeaderBlock{Header: h}, nil
	case BlobOSMData:
		return b.DecodePrimitive()
	default:
		return UnknownBlock{Type: b.header.GetType()}, nil
	}
}

// DecodeHeader decodes an OSMHeader blob.
func (b *Blob) DecodeHeader() (model.Header, error) {
	if b.Type() != BlobOSMHeader {
		return model.Header{}, fmt.Errorf("%w: blob %d is %q, not %s", ErrSchemaDecode, b.index, b.header.GetType(), OSMHeaderType)
	}

	buf, err := b.unpack()
	if err != nil {
		return model.Header{}, err
	}

	hb := &pb.HeaderBlock{}
	if err := proto.Unmarshal(buf, hb); err != nil {
		return model.Header{}, fmt.Errorf("%w: blob %d: %w", ErrSchemaDecode, b.index, err)
	}

	return decodeHeader(hb), nil
}

// DecodePrimitive decodes an OSMData blob.
func (b *Blob) DecodePrimitive() (*PrimitiveBlock, error) {
	if b.Type() != BlobOSMData {
		return nil, fmt.Errorf("%w: blob %d is %q, not %s", ErrSchemaDecode, b.index, b.header.GetType(), OSMDataType)
	}

	buf, err := b.unpack()
	if err != nil {
		return nil, err
	}

	blk := &pb.PrimitiveBlock{}
	if err := proto.Unmarshal(buf, blk); err != nil {
		return nil, fmt.Errorf("%w: blob %d: %w", ErrSchemaDecode, b.index, err)
	}

	return newPrimitiveBlock(blk), nil
}

func (b *Blob) unpack() ([]byte, error) {
	buf, err := unpack(b.codecs, b.blob, b.maxBlobSize)
	if err != nil {
		return nil, fmt.Errorf("blob %d: %w", b.index, err)
	}

	return buf, nil
}

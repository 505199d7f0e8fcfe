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

package pbtest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz/lzma"
	"google.golang.org/protobuf/proto"

	"m4o.io/pbf/v3/internal/pb"
)

// Kind selects the data variant of a blob.  Its values are the field
// numbers of the variants in the blob message.
type Kind int32

const (
	None  Kind = 0
	Raw   Kind = 1
	Zlib  Kind = 3
	Lzma  Kind = 4
	Bzip2 Kind = 5
	Lz4   Kind = 6
	Zstd  Kind = 7
)

// Packer is the interface that groups methods for packing the contents of a
// PBF blob and saving the packed data in the correct place.
type Packer interface {
	// WriteCloser is used to write the contents of the blob to be packed.
	// Be sure to call the Close method to ensure that all the contents are
	// packed.
	io.WriteCloser

	// SaveTo will save the packed contents to the blob using the correct
	// data variant.
	SaveTo(blob *pb.Blob)
}

type packer struct {
	io.WriteCloser

	kind Kind
	buf  *bytes.Buffer
}

func (p *packer) SaveTo(blob *pb.Blob) {
	SetData(blob, p.kind, p.buf.Bytes())
}

type nopCloserWriter struct {
	io.Writer
}

func (w nopCloserWriter) Close() error {
	return nil
}

// NewPacker creates the appropriate Packer for the compression.
func NewPacker(kind Kind) (Packer, error) {
	p := &packer{kind: kind, buf: &bytes.Buffer{}}

	var err error

	switch kind {
	case Raw:
		p.WriteCloser = nopCloserWriter{p.buf}
	case Zlib:
		p.WriteCloser = zlib.NewWriter(p.buf)
	case Lzma:
		p.WriteCloser, err = lzma.NewWriter(p.buf)
	case Lz4:
		p.WriteCloser = lz4.NewWriter(p.buf)
	case Zstd:
		p.WriteCloser, err = zstd.NewWriter(p.buf)
	default:
		return nil, fmt.Errorf("unknown compression type: %d", kind)
	}

	if err != nil {
		return nil, fmt.Errorf("could not create packer: %w", err)
	}

	return p, nil
}

// SetData stores data in the variant of blob selected by kind.  None clears
// the payload.
func SetData(blob *pb.Blob, kind Kind, data []byte) {
	switch kind {
	case Raw:
		blob.Data = &pb.Blob_Raw{Raw: data}
	case Zlib:
		blob.Data = &pb.Blob_ZlibData{ZlibData: data}
	case Lzma:
		blob.Data = &pb.Blob_LzmaData{LzmaData: data}
	case Bzip2:
		blob.Data = &pb.Blob_OBSOLETEBzip2Data{OBSOLETEBzip2Data: data}
	case Lz4:
		blob.Data = &pb.Blob_Lz4Data{Lz4Data: data}
	case Zstd:
		blob.Data = &pb.Blob_ZstdData{ZstdData: data}
	default:
		blob.Data = nil
	}
}

// NewBlob returns a blob carrying data, as is, in the variant of kind.
func NewBlob(kind Kind, data []byte) *pb.Blob {
	blob := &pb.Blob{}
	SetData(blob, kind, data)

	return blob
}

// Pack encodes and compresses msg into an encoded Blob.
func Pack(msg proto.Message, kind Kind) ([]byte, error) {
	b, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("could not marshal message: %w", err)
	}

	return PackBytes(b, kind)
}

// PackBytes compresses an already encoded message into an encoded Blob.
func PackBytes(b []byte, kind Kind) ([]byte, error) {
	p, err := NewPacker(kind)
	if err != nil {
		return nil, err
	}

	if _, err = p.Write(b); err != nil {
		return nil, fmt.Errorf("could not compress message: %w", err)
	}

	if err = p.Close(); err != nil {
		return nil, fmt.Errorf("could not close writer: %w", err)
	}

	blob := &pb.Blob{RawSize: proto.Int32(int32(len(b)))}

	p.SaveTo(blob)

	return proto.Marshal(blob)
}

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
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz/lzma"

	"m4o.io/pbf/v3/internal/pb"
)

// Compression identifies the codec of a blob payload.
type Compression int32

// Payload codecs defined by the file format.  Each value is the field
// number of its data variant in the blob message.
const (
	Raw   Compression = 1
	Zlib  Compression = 3
	Lzma  Compression = 4
	Bzip2 Compression = 5
	Lz4   Compression = 6
	Zstd  Compression = 7
)

func (c Compression) String() string {
	switch c {
	case Raw:
		return "raw"
	case Zlib:
		return "zlib"
	case Lzma:
		return "lzma"
	case Bzip2:
		return "bzip2"
	case Lz4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", int32(c))
	}
}

// Decompressor opens a reader over the decompressed form of payload.  If the
// returned reader is also an io.Closer, it is closed once drained.
type Decompressor func(payload []byte) (io.Reader, error)

// defaultCodecs is the codec set of a reader built without options.
var defaultCodecs = map[Compression]Decompressor{
	Zlib: decompressZlib,
}

// extendedCodecs is added by WithExtendedCodecs.
var extendedCodecs = map[Compression]Decompressor{
	Raw:  decompressRaw,
	Lzma: decompressLzma,
	Lz4:  decompressLz4,
	Zstd: decompressZstd,
}

func decompressRaw(payload []byte) (io.Reader, error) {
	return bytes.NewReader(payload), nil
}

func decompressZlib(payload []byte) (io.Reader, error) {
	return zlib.NewReader(bytes.NewReader(payload))
}

func decompressLzma(payload []byte) (io.Reader, error) {
	return lzma.NewReader(bytes.NewReader(payload))
}

func decompressLz4(payload []byte) (io.Reader, error) {
	return lz4.NewReader(bytes.NewReader(payload)), nil
}

func decompressZstd(payload []byte) (io.Reader, error) {
	d, err := zstd.NewReader(bytes.NewReader(payload), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	return d.IOReadCloser(), nil
}

// payloadOf returns the codec and the still compressed payload of blob.  A
// blob without a data variant reports false.
func payloadOf(blob *pb.Blob) (Compression, []byte, bool) {
	switch data := blob.GetData().(type) {
	case *pb.Blob_Raw:
		return Raw, data.Raw, true
	case *pb.Blob_ZlibData:
		return Zlib, data.ZlibData, true
	case *pb.Blob_LzmaData:
		return Lzma, data.LzmaData, true
	case *pb.Blob_OBSOLETEBzip2Data:
		return Bzip2, data.OBSOLETEBzip2Data, true
	case *pb.Blob_Lz4Data:
		return Lz4, data.Lz4Data, true
	case *pb.Blob_ZstdData:
		return Zstd, data.ZstdData, true
	default:
		return 0, nil, false
	}
}

// unpack decompresses the payload of blob into an owned buffer, reading no
// more than maxSize bytes of output.
func unpack(codecs map[Compression]Decompressor, blob *pb.Blob, maxSize int) ([]byte, error) {
	c, payload, ok := payloadOf(blob)
	if !ok {
		return nil, ErrMissingBlobPayload
	}

	factory, ok := codecs[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
	}

	rdr, err := factory(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecompress, c, err)
	}

	if closer, ok := rdr.(io.Closer); ok {
		defer closer.Close()
	}

	buf := bytes.NewBuffer(make([]byte, 0, min(2*len(payload), maxSize)))

	n, err := buf.ReadFrom(io.LimitReader(rdr, int64(maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecompress, c, err)
	}

	if n > int64(maxSize) {
		return nil, fmt.Errorf("%w: %w: %s payload inflates beyond %d bytes", ErrDecompress, ErrOversizedBlob, c, maxSize)
	}

	if blob.RawSize != nil && n != int64(blob.GetRawSize()) {
		return nil, fmt.Errorf("%w: %s payload inflated to %d bytes but raw_size is %d",
			ErrDecompress, c, n, blob.GetRawSize())
	}

	return buf.Bytes(), nil
}

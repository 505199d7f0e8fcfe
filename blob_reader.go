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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"google.golang.org/protobuf/proto"

	"m4o.io/pbf/v3/internal/core"
	"m4o.io/pbf/v3/internal/pb"
)

// BlobReader frames a byte stream into blobs.  It reads exactly one blob
// header and body per call to Next and buffers nothing beyond them.  Any
// error is terminal: corrupt framing cannot be resynchronized, so every
// later call reports io.EOF.
type BlobReader struct {
	r   io.Reader
	cfg readerOptions

	seeker io.Seeker // nil unless r can rewind
	start  int64     // offset of the first blob in r

	index    int
	started  bool
	finished bool
}

// NewBlobReader returns a BlobReader over r.  When r is an io.Seeker, All
// can be called more than once and restarts from the current offset of r.
func NewBlobReader(r io.Reader, opts ...ReaderOption) *BlobReader {
	return newBlobReader(r, newReaderOptions(opts))
}

func newBlobReader(r io.Reader, cfg readerOptions) *BlobReader {
	br := &BlobReader{r: r, cfg: cfg}

	if s, ok := r.(io.Seeker); ok {
		if off, err := s.Seek(0, io.SeekCurrent); err == nil {
			br.seeker = s
			br.start = off
		}
	}

	return br
}

// Next reads the next blob.  It returns io.EOF, unwrapped, once the stream
// ends cleanly or after an error.
func (br *BlobReader) Next() (*Blob, error) {
	if br.finished {
		return nil, io.EOF
	}

	br.started = true

	blob, err := br.readBlob()
	if err != nil {
		br.finished = true

		return nil, err
	}

	br.index++

	return blob, nil
}

// All iterates the blobs of the stream from its start.  Iteration ends after
// the first error.  Calling All again rewinds a seekable source; any other
// source yields ErrNotRestartable once it has been read from.
func (br *BlobReader) All() iter.Seq2[*Blob, error] {
	return func(yield func(*Blob, error) bool) {
		if err := br.rewind(); err != nil {
			yield(nil, err)

			return
		}

		for {
			blob, err := br.Next()
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(blob, err) || err != nil {
				return
			}
		}
	}
}

func (br *BlobReader) rewind() error {
	if !br.started {
		return nil
	}

	if br.seeker == nil {
		return ErrNotRestartable
	}

	if _, err := br.seeker.Seek(br.start, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrNotRestartable, err)
	}

	br.index = 0
	br.started = false
	br.finished = false

	return nil
}

// readBlob reads one frame: the header length, the blob header and the blob
// body.
func (br *BlobReader) readBlob() (*Blob, error) {
	h, err := br.readBlobHeader()
	if err != nil {
		return nil, err
	}

	size := h.GetDatasize()

	if size < 0 {
		return nil, fmt.Errorf("%w: blob %d: negative datasize %d", ErrBlobHeaderDecode, br.index, size)
	}

	if int(size) > br.cfg.maxBlobSize {
		return nil, fmt.Errorf("%w: blob %d declares %d bytes, limit is %d",
			ErrOversizedBlob, br.index, size, br.cfg.maxBlobSize)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(br.r, body); err != nil {
		return nil, fmt.Errorf("%w: blob %d body: %w", ErrFramingRead, br.index, unexpected(err))
	}

	blob := &pb.Blob{}
	if err := proto.Unmarshal(body, blob); err != nil {
		return nil, fmt.Errorf("%w: blob %d: %w", ErrBlobDecode, br.index, err)
	}

	return &Blob{
		index:       br.index,
		header:      h,
		blob:        blob,
		codecs:      br.cfg.codecs,
		maxBlobSize: br.cfg.maxBlobSize,
	}, nil
}

// readBlobHeader reads the header length and the blob header it announces.
// A stream that ends before the first byte of the length is io.EOF.
func (br *BlobReader) readBlobHeader() (*pb.BlobHeader, error) {
	var size [4]byte

	if n, err := io.ReadFull(br.r, size[:]); err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("%w: blob %d header length: %w", ErrFramingRead, br.index, unexpected(err))
	}

	hlen := binary.BigEndian.Uint32(size[:])
	if hlen >= MaxBlobHeaderSize {
		return nil, fmt.Errorf("%w: blob %d declares %d bytes", ErrOversizedBlobHeader, br.index, hlen)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	if _, err := io.CopyN(buf, br.r, int64(hlen)); err != nil {
		return nil, fmt.Errorf("%w: blob %d header: %w", ErrFramingRead, br.index, unexpected(err))
	}

	h := &pb.BlobHeader{}
	if err := proto.Unmarshal(buf.Bytes(), h); err != nil {
		return nil, fmt.Errorf("%w: blob %d: %w", ErrBlobHeaderDecode, br.index, err)
	}

	return h, nil
}

// unexpected turns an io.EOF met in the middle of a frame into
// io.ErrUnexpectedEOF, so that only a clean end of stream is io.EOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

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
	"context"
	"io"

	"m4o.io/pbf/v3/model"
)

// Reader traverses every entity of an OpenStreetMap PBF stream.  Only
// OSMData blobs are visited; the header and unknown blobs are left to the
// lower level API of Blobs.
type Reader struct {
	blobs *BlobReader
	cfg   readerOptions
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	cfg := newReaderOptions(opts)

	return &Reader{blobs: newBlobReader(r, cfg), cfg: cfg}
}

// Blobs returns the BlobReader the Reader is built on.  Reading from it
// advances the Reader as well.
func (r *Reader) Blobs() *BlobReader {
	return r.blobs
}

// ForEach calls fn for every entity in file order.  Within a group, dense
// nodes come first, followed by nodes, ways and relations.
//
// Errors are handed to the ErrorHandler, which aborts by default.  When the
// handler returns nil the rest of the offending blob is skipped; a framing
// error still ends the traversal, since the stream cannot be resynchronized.
// An error returned by fn aborts the traversal and is returned as is.  The
// context is checked between blobs.
func (r *Reader) ForEach(ctx context.Context, fn func(model.Entity) error) error {
	for blob, err := range r.blobs.All() {
		if err != nil {
			return r.stop(err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if blob.Type() != BlobOSMData {
			continue
		}

		if err := r.visit(blob, fn); err != nil {
			return err
		}
	}

	return nil
}

// visit calls fn for each entity of blob until the first decoding error.
func (r *Reader) visit(blob *Blob, fn func(model.Entity) error) error {
	blk, err := blob.DecodePrimitive()
	if err != nil {
		return r.skip(blob, err)
	}

	for e, err := range blk.Entities() {
		if err != nil {
			return r.skip(blob, err)
		}

		if err := fn(e); err != nil {
			return err
		}
	}

	return nil
}

// skip consults the ErrorHandler about a failed blob.
func (r *Reader) skip(blob *Blob, err error) error {
	if err := r.cfg.onError(err); err != nil {
		return err
	}

	r.cfg.logger.Warn("skipping rest of blob", "blob", blob.Index(), "error", err)

	return nil
}

// stop consults the ErrorHandler about an error that ends the stream.
func (r *Reader) stop(err error) error {
	if err := r.cfg.onError(err); err != nil {
		return err
	}

	r.cfg.logger.Warn("blob stream ended early", "error", err)

	return nil
}

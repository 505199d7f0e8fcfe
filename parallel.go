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

	"github.com/destel/rill"

	"m4o.io/pbf/v3/model"
)

// decoded holds the entities of one blob, up to its first decoding error.
type decoded struct {
	blob     *Blob
	entities []model.Entity
	err      error
}

// ForEachParallel is ForEach with up to n blobs decompressed and decoded
// concurrently.  Blobs are still framed one at a time, and fn is called from
// a single goroutine with entities in file order, so fn needs no locking.
// Error handling is the same as for ForEach.
func (r *Reader) ForEachParallel(ctx context.Context, n int, fn func(model.Entity) error) error {
	n = max(n, 1)

	ctx, cancel := context.WithCancel(ctx)

	blobs := make(chan rill.Try[*Blob])

	go func() {
		defer close(blobs)

		for blob, err := range r.blobs.All() {
			if err == nil && blob.Type() != BlobOSMData {
				continue
			}

			select {
			case blobs <- rill.Wrap(blob, err):
			case <-ctx.Done():
				return
			}
		}
	}()

	results := rill.OrderedMap(blobs, n, func(blob *Blob) (decoded, error) {
		return decodeBlob(blob), nil
	})

	// the producer must be gone before the reader can be used again
	defer func() {
		cancel()
		rill.Drain(results)
	}()

	for res := range results {
		if res.Error != nil {
			return r.stop(res.Error)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		for _, e := range res.Value.entities {
			if err := fn(e); err != nil {
				return err
			}
		}

		if res.Value.err != nil {
			if err := r.skip(res.Value.blob, res.Value.err); err != nil {
				return err
			}
		}
	}

	return ctx.Err()
}

func decodeBlob(blob *Blob) decoded {
	d := decoded{blob: blob}

	blk, err := blob.DecodePrimitive()
	if err != nil {
		d.err = err

		return d
	}

	for e, err := range blk.Entities() {
		if err != nil {
			d.err = err

			break
		}

		d.entities = append(d.entities, e)
	}

	return d
}

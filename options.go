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
	"log/slog"
	"maps"
)

const (
	// MaxBlobHeaderSize is the exclusive upper bound on the size of an
	// encoded blob header.
	MaxBlobHeaderSize = 64 * 1024

	// DefaultMaxBlobSize is the default upper bound on the size of a blob,
	// both as framed and once decompressed.
	DefaultMaxBlobSize = 32 * 1024 * 1024
)

// ErrorHandler decides what happens to an error met while traversing
// entities.  Returning nil skips the rest of the offending blob and carries
// on with the next one; returning an error aborts the traversal with it.
type ErrorHandler func(err error) error

// AbortOnError is the default ErrorHandler: every error ends the traversal.
func AbortOnError(err error) error {
	return err
}

// SkipOnError is an ErrorHandler that skips the rest of any blob that fails
// to decode.
func SkipOnError(error) error {
	return nil
}

// readerOptions provides optional configuration parameters for BlobReader
// and Reader construction.
type readerOptions struct {
	// ceiling on framed and decompressed blobs
	maxBlobSize int

	// codecs available to Blob.Decode
	codecs map[Compression]Decompressor

	onError ErrorHandler
	logger  *slog.Logger
}

// ReaderOption configures how we set up the reader.
type ReaderOption func(*readerOptions)

// WithMaxBlobSize lets you change the ceiling on blob sizes.  Values below
// 1 are ignored.
func WithMaxBlobSize(n int) ReaderOption {
	return func(o *readerOptions) {
		if n > 0 {
			o.maxBlobSize = n
		}
	}
}

// WithDecompressor registers d as the decompressor for c, replacing any
// previous one.  A nil d removes the codec.
func WithDecompressor(c Compression, d Decompressor) ReaderOption {
	return func(o *readerOptions) {
		if d == nil {
			delete(o.codecs, c)

			return
		}

		o.codecs[c] = d
	}
}

// WithExtendedCodecs enables raw, lzma, lz4 and zstd payloads in addition to
// zlib.
func WithExtendedCodecs() ReaderOption {
	return func(o *readerOptions) {
		maps.Copy(o.codecs, extendedCodecs)
	}
}

// WithErrorHandler lets you choose between aborting and skipping on errors.
func WithErrorHandler(h ErrorHandler) ReaderOption {
	return func(o *readerOptions) {
		if h != nil {
			o.onError = h
		}
	}
}

// WithLogger sets the logger the Reader reports skipped blobs to.
func WithLogger(l *slog.Logger) ReaderOption {
	return func(o *readerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// defaultReaderConfig provides a default configuration for readers.
var defaultReaderConfig = readerOptions{
	maxBlobSize: DefaultMaxBlobSize,
	codecs:      defaultCodecs,
	onError:     AbortOnError,
}

func newReaderOptions(opts []ReaderOption) readerOptions {
	cfg := defaultReaderConfig
	cfg.codecs = maps.Clone(defaultReaderConfig.codecs)
	cfg.logger = slog.Default()

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

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
	"errors"
)

// Errors returned while decoding.  Each is wrapped with context, so test
// for them with errors.Is.
var (
	// ErrFramingRead is returned when the byte source fails, or ends, in the
	// middle of a blob frame.
	ErrFramingRead = errors.New("unable to read blob frame")

	// ErrOversizedBlobHeader is returned when a frame declares a blob header
	// of 64 KiB or more.
	ErrOversizedBlobHeader = errors.New("blob header too large")

	// ErrOversizedBlob is returned when a blob header declares a body larger
	// than the configured ceiling.
	ErrOversizedBlob = errors.New("blob too large")

	ErrBlobHeaderDecode = errors.New("unable to decode blob header")

	ErrBlobDecode = errors.New("unable to decode blob")

	// ErrMissingBlobPayload is returned when a blob carries none of the data
	// variants.
	ErrMissingBlobPayload = errors.New("blob has no payload")

	// ErrUnsupportedCompression is returned for a payload whose codec has no
	// registered Decompressor.
	ErrUnsupportedCompression = errors.New("unsupported blob compression")

	ErrDecompress = errors.New("unable to decompress blob")

	// ErrSchemaDecode is returned when decompressed blob data is not a valid
	// HeaderBlock or PrimitiveBlock.
	ErrSchemaDecode = errors.New("unable to decode block")

	ErrStringIndexOutOfRange = errors.New("string table index out of range")

	ErrInvalidUTF8 = errors.New("invalid UTF-8 in string table")

	ErrUnknownMemberType = errors.New("unrecognized relation member type")

	// ErrMisalignedArrays is returned when arrays that must pair up element
	// by element differ in length, e.g. the keys and vals of a way.
	ErrMisalignedArrays = errors.New("parallel arrays differ in length")

	// ErrNotRestartable is returned when a second pass is requested over a
	// source that cannot seek back to its start.
	ErrNotRestartable = errors.New("blob source is not restartable")
)

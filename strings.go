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
	"unicode/utf8"

	"m4o.io/pbf/v3/model"
)

// stringTable is the string table of a primitive block.  Entries alias the
// block's buffer; index 0 is reserved as the dense tag delimiter.
type stringTable [][]byte

// bytes returns entry i without copying it.
func (st stringTable) bytes(i int64) ([]byte, error) {
	if i < 0 || i >= int64(len(st)) {
		return nil, fmt.Errorf("%w: index %d, table size %d", ErrStringIndexOutOfRange, i, len(st))
	}

	s := st[i]
	if !utf8.Valid(s) {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidUTF8, i)
	}

	return s, nil
}

// lookup returns a copy of entry i.
func (st stringTable) lookup(i int64) (string, error) {
	b, err := st.bytes(i)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// tags builds the tags of an entity from parallel key and value indexes.
// Any unresolvable index fails the whole set.
func (st stringTable) tags(keys, vals []uint32) (model.Tags, error) {
	if len(keys) != len(vals) {
		return nil, fmt.Errorf("%w: %d keys, %d vals", ErrMisalignedArrays, len(keys), len(vals))
	}

	if len(keys) == 0 {
		return nil, nil
	}

	tags := model.NewTagBuilder(len(keys))

	for i := range keys {
		if err := st.addTag(&tags, int64(keys[i]), int64(vals[i])); err != nil {
			return nil, err
		}
	}

	return tags.Tags(), nil
}

// denseTags builds the tags of a dense node from its segment of keys_vals,
// which holds (key, value) index pairs without the trailing 0.
func (st stringTable) denseTags(keysVals []int32) (model.Tags, error) {
	if len(keysVals) == 0 {
		return nil, nil
	}

	tags := model.NewTagBuilder(len(keysVals) / 2)

	for i := 0; i+1 < len(keysVals); i += 2 {
		if err := st.addTag(&tags, int64(keysVals[i]), int64(keysVals[i+1])); err != nil {
			return nil, err
		}
	}

	return tags.Tags(), nil
}

func (st stringTable) addTag(tags *model.TagBuilder, key, val int64) error {
	k, err := st.lookup(key)
	if err != nil {
		return fmt.Errorf("tag key: %w", err)
	}

	v, err := st.lookup(val)
	if err != nil {
		return fmt.Errorf("tag value for %q: %w", k, err)
	}

	tags.Set(k, v)

	return nil
}

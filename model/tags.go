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

package model

// Tag is a single key=value pair describing an entity.
type Tag struct {
	Key   string `json:"k"`
	Value string `json:"v"`
}

// Tags is an ordered collection of tags.  The order is the order in which
// the tags were encoded.  Keys are unique: Set on an existing key replaces
// its value and keeps its position, so a duplicated key in the source data
// resolves to the last value written.
type Tags []Tag

// Set assigns value to key.
func (t *Tags) Set(key, value string) {
	for i := range *t {
		if (*t)[i].Key == key {
			(*t)[i].Value = value

			return
		}
	}

	*t = append(*t, Tag{Key: key, Value: value})
}

// indexThreshold is the number of tags past which a TagBuilder looks keys
// up in a map instead of scanning.
const indexThreshold = 16

// TagBuilder accumulates tags with the semantics of Tags.Set.  Small sets
// are scanned; once a set grows past indexThreshold its keys are indexed,
// so building n tags stays linear.
type TagBuilder struct {
	tags  Tags
	index map[string]int
}

// NewTagBuilder returns a builder with room for n tags.
func NewTagBuilder(n int) TagBuilder {
	return TagBuilder{tags: make(Tags, 0, n)}
}

// Set assigns value to key.
func (b *TagBuilder) Set(key, value string) {
	if b.index == nil {
		if len(b.tags) < indexThreshold {
			b.tags.Set(key, value)

			return
		}

		b.index = make(map[string]int, 2*len(b.tags))
		for i, tag := range b.tags {
			b.index[tag.Key] = i
		}
	}

	if i, ok := b.index[key]; ok {
		b.tags[i].Value = value

		return
	}

	b.index[key] = len(b.tags)
	b.tags = append(b.tags, Tag{Key: key, Value: value})
}

// Tags returns the tags built so far.
func (b *TagBuilder) Tags() Tags {
	return b.tags
}

// Get returns the value of key and whether it was present.
func (t Tags) Get(key string) (string, bool) {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value, true
		}
	}

	return "", false
}

// Find returns the value of key, or the empty string.
func (t Tags) Find(key string) string {
	v, _ := t.Get(key)

	return v
}

// Keys returns the keys in order.
func (t Tags) Keys() []string {
	keys := make([]string, len(t))
	for i, tag := range t {
		keys[i] = tag.Key
	}

	return keys
}

// Map returns the tags as an unordered map.
func (t Tags) Map() map[string]string {
	m := make(map[string]string, len(t))
	for _, tag := range t {
		m[tag.Key] = tag.Value
	}

	return m
}

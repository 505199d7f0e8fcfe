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

package cat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/pbf/v3"
	"m4o.io/pbf/v3/internal/pbtest"
	"m4o.io/pbf/v3/model"
)

func stream(t *testing.T) *bytes.Reader {
	t.Helper()

	var buf bytes.Buffer

	require.NoError(t, pbtest.WriteHeader(&buf, model.Header{WritingProgram: "cat"}, pbtest.Zlib))

	nodes := []model.Entity{
		&model.Node{ID: 1, Tags: model.Tags{{Key: "amenity", Value: "pub"}}, NanoLat: 51_500_000_000},
		&model.Node{ID: 2, NanoLat: 51_600_000_000},
	}
	require.NoError(t, pbtest.WriteEntities(&buf, nodes, true, pbtest.Zlib))

	rest := []model.Entity{
		&model.Way{ID: 10, NodeIDs: []model.ID{1, 2}},
		&model.Relation{ID: 20, Members: []model.Member{{ID: 10, Type: model.WAY, Role: "outer"}}},
	}
	require.NoError(t, pbtest.WriteEntities(&buf, rest, false, pbtest.Zlib))

	return bytes.NewReader(buf.Bytes())
}

func TestRunCat(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, runCat(context.Background(), pbf.NewReader(stream(t)), &out, 2))

	var ids []int64

	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var v struct {
			ID   int64             `json:"id"`
			Tags map[string]string `json:"tags"`
		}

		require.NoError(t, json.Unmarshal(sc.Bytes(), &v), sc.Text())

		ids = append(ids, v.ID)

		if v.ID == 1 {
			assert.Equal(t, "pub", v.Tags["amenity"])
		}
	}

	assert.Equal(t, []int64{1, 2, 10, 20}, ids)
}

func TestRunCatCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer

	err := runCat(ctx, pbf.NewReader(stream(t)), &out, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCatUnknownMember(t *testing.T) {
	var buf bytes.Buffer

	rel := &model.Relation{ID: 1, Members: []model.Member{{ID: 2, Type: model.EntityType(9)}}}
	blk := pbtest.EncodeBlock([]model.Entity{rel}, false)
	require.NoError(t, pbtest.WriteBlock(&buf, "OSMData", blk, pbtest.Zlib))

	err := runCat(context.Background(), pbf.NewReader(&buf), new(bytes.Buffer), 1)
	assert.ErrorIs(t, err, pbf.ErrUnknownMemberType)
}

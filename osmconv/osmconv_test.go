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

package osmconv

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/pbf/v3/model"
)

var stamp = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func info() *model.Info {
	return &model.Info{
		Version:   3,
		UID:       42,
		Timestamp: stamp,
		Changeset: 1001,
		User:      "mapper",
		Visible:   true,
	}
}

func TestNode(t *testing.T) {
	n := &model.Node{
		ID:      7,
		Tags:    model.Tags{{Key: "amenity", Value: "cafe"}, {Key: "name", Value: "Bean"}},
		Info:    info(),
		NanoLat: 51_507_400_000,
		NanoLon: -127_800_000,
	}

	o := Node(n)

	assert.Equal(t, osm.NodeID(7), o.ID)
	assert.InDelta(t, 51.5074, o.Lat, 1e-9)
	assert.InDelta(t, -0.1278, o.Lon, 1e-9)
	assert.Equal(t, osm.Tags{{Key: "amenity", Value: "cafe"}, {Key: "name", Value: "Bean"}}, o.Tags)
	assert.Equal(t, 3, o.Version)
	assert.Equal(t, stamp, o.Timestamp)
	assert.Equal(t, osm.ChangesetID(1001), o.ChangesetID)
	assert.Equal(t, osm.UserID(42), o.UserID)
	assert.Equal(t, "mapper", o.User)
	assert.True(t, o.Visible)
}

func TestNodeWithoutInfo(t *testing.T) {
	o := Node(&model.Node{ID: 1})

	assert.True(t, o.Visible)
	assert.Zero(t, o.Version)
	assert.True(t, o.Timestamp.IsZero())
	assert.Nil(t, o.Tags)
}

func TestHiddenNode(t *testing.T) {
	i := info()
	i.Visible = false

	assert.False(t, Node(&model.Node{ID: 1, Info: i}).Visible)
}

func TestWay(t *testing.T) {
	w := &model.Way{
		ID:      9,
		Tags:    model.Tags{{Key: "highway", Value: "residential"}},
		Info:    info(),
		NodeIDs: []model.ID{1, 2, 3, 1},
	}

	o := Way(w)

	assert.Equal(t, osm.WayID(9), o.ID)
	assert.Equal(t, []osm.NodeID{1, 2, 3, 1}, o.Nodes.NodeIDs())
	assert.Equal(t, "residential", o.Tags.Find("highway"))
	assert.Equal(t, osm.UserID(42), o.UserID)
	assert.Equal(t, 3, o.Version)
}

func TestRelation(t *testing.T) {
	r := &model.Relation{
		ID:   11,
		Tags: model.Tags{{Key: "type", Value: "multipolygon"}},
		Members: []model.Member{
			{ID: 10, Type: model.NODE, Role: "label"},
			{ID: 15, Type: model.WAY, Role: "outer"},
			{ID: 20, Type: model.RELATION},
		},
	}

	o, err := Relation(r)
	require.NoError(t, err)

	assert.Equal(t, osm.RelationID(11), o.ID)
	assert.True(t, o.Visible)
	assert.Equal(t, osm.Members{
		{Type: osm.TypeNode, Ref: 10, Role: "label"},
		{Type: osm.TypeWay, Ref: 15, Role: "outer"},
		{Type: osm.TypeRelation, Ref: 20},
	}, o.Members)
}

func TestRelationUnknownMember(t *testing.T) {
	r := &model.Relation{ID: 11, Members: []model.Member{{ID: 1, Type: model.EntityType(7)}}}

	_, err := Relation(r)
	assert.ErrorContains(t, err, "relation 11 member 0")
}

func TestEntity(t *testing.T) {
	tests := []struct {
		name   string
		entity model.Entity
		want   osm.ObjectID
	}{
		{"node", &model.Node{ID: 1}, osm.NodeID(1).ObjectID(0)},
		{"way", &model.Way{ID: 2}, osm.WayID(2).ObjectID(0)},
		{"relation", &model.Relation{ID: 3}, osm.RelationID(3).ObjectID(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := Entity(tt.entity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.ObjectID())
		})
	}
}

func TestEntityNil(t *testing.T) {
	_, err := Entity(nil)
	assert.Error(t, err)
}

func TestPoint(t *testing.T) {
	p := Point(&model.Node{NanoLat: 10_000_000_000, NanoLon: 20_000_000_000})

	assert.Equal(t, orb.Point{20, 10}, p)
}

func TestBound(t *testing.T) {
	b := &model.BoundingBox{Top: 52, Left: -1, Bottom: 51, Right: 1}

	assert.Equal(t, orb.Bound{Min: orb.Point{-1, 51}, Max: orb.Point{1, 52}}, Bound(b))
	assert.True(t, Bound(b).Contains(orb.Point{0, 51.5}))

	bounds := Bounds(b)
	assert.Equal(t, &osm.Bounds{MinLat: 51, MaxLat: 52, MinLon: -1, MaxLon: 1}, bounds)
}

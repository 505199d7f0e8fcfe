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

// Package osmconv converts decoded entities into the object model of
// github.com/paulmach/osm and the geometry types of github.com/paulmach/orb.
package osmconv

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"m4o.io/pbf/v3/model"
)

// Entity converts any decoded entity.
func Entity(e model.Entity) (osm.Object, error) {
	switch v := e.(type) {
	case *model.Node:
		return Node(v), nil
	case *model.Way:
		return Way(v), nil
	case *model.Relation:
		return Relation(v)
	default:
		return nil, fmt.Errorf("unexpected entity %T", e)
	}
}

// Node converts a node.  Entities decoded without metadata come out
// visible, with version 0.
func Node(n *model.Node) *osm.Node {
	o := &osm.Node{
		ID:      osm.NodeID(n.ID),
		Lat:     float64(n.Lat()),
		Lon:     float64(n.Lon()),
		Tags:    Tags(n.Tags),
		Visible: true,
	}

	if i := n.Info; i != nil {
		o.Version = int(i.Version)
		o.Timestamp = i.Timestamp
		o.ChangesetID = osm.ChangesetID(i.Changeset)
		o.UserID = osm.UserID(i.UID)
		o.User = i.User
		o.Visible = i.Visible
	}

	return o
}

// Way converts a way.  Way nodes only carry their ids.
func Way(w *model.Way) *osm.Way {
	o := &osm.Way{
		ID:      osm.WayID(w.ID),
		Tags:    Tags(w.Tags),
		Visible: true,
	}

	if len(w.NodeIDs) > 0 {
		o.Nodes = make(osm.WayNodes, len(w.NodeIDs))
		for i, id := range w.NodeIDs {
			o.Nodes[i] = osm.WayNode{ID: osm.NodeID(id)}
		}
	}

	if i := w.Info; i != nil {
		o.Version = int(i.Version)
		o.Timestamp = i.Timestamp
		o.ChangesetID = osm.ChangesetID(i.Changeset)
		o.UserID = osm.UserID(i.UID)
		o.User = i.User
		o.Visible = i.Visible
	}

	return o
}

// Relation converts a relation.  It fails only on a member whose type is
// not a node, way or relation.
func Relation(r *model.Relation) (*osm.Relation, error) {
	o := &osm.Relation{
		ID:      osm.RelationID(r.ID),
		Tags:    Tags(r.Tags),
		Visible: true,
	}

	if len(r.Members) > 0 {
		o.Members = make(osm.Members, len(r.Members))
		for i, m := range r.Members {
			typ, err := MemberType(m.Type)
			if err != nil {
				return nil, fmt.Errorf("relation %d member %d: %w", r.ID, i, err)
			}

			o.Members[i] = osm.Member{Type: typ, Ref: int64(m.ID), Role: m.Role}
		}
	}

	if i := r.Info; i != nil {
		o.Version = int(i.Version)
		o.Timestamp = i.Timestamp
		o.ChangesetID = osm.ChangesetID(i.Changeset)
		o.UserID = osm.UserID(i.UID)
		o.User = i.User
		o.Visible = i.Visible
	}

	return o, nil
}

// MemberType maps an entity type onto the osm member type.
func MemberType(t model.EntityType) (osm.Type, error) {
	switch t {
	case model.NODE:
		return osm.TypeNode, nil
	case model.WAY:
		return osm.TypeWay, nil
	case model.RELATION:
		return osm.TypeRelation, nil
	default:
		return "", fmt.Errorf("unknown member type %s", t)
	}
}

// Tags converts tags, keeping their order.
func Tags(t model.Tags) osm.Tags {
	if len(t) == 0 {
		return nil
	}

	tags := make(osm.Tags, len(t))
	for i, tag := range t {
		tags[i] = osm.Tag{Key: tag.Key, Value: tag.Value}
	}

	return tags
}

// Point returns the location of a node as an orb point, longitude first.
func Point(n *model.Node) orb.Point {
	return orb.Point{float64(n.Lon()), float64(n.Lat())}
}

// Bound converts a bounding box.
func Bound(b *model.BoundingBox) orb.Bound {
	return orb.Bound{
		Min: orb.Point{float64(b.Left), float64(b.Bottom)},
		Max: orb.Point{float64(b.Right), float64(b.Top)},
	}
}

// Bounds converts a bounding box into the bounds element of an osm
// document.
func Bounds(b *model.BoundingBox) *osm.Bounds {
	return &osm.Bounds{
		MinLat: float64(b.Bottom),
		MaxLat: float64(b.Top),
		MinLon: float64(b.Left),
		MaxLon: float64(b.Right),
	}
}

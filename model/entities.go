// Copyright 2017-25 the original author or authors.
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

// Package model contains the entities decoded from OpenStreetMap PBF data.
//
// Entities never reference the block they were decoded from: every string
// is copied out of the block's string table, so an entity may be retained
// after the block is gone.
package model

//go:generate stringer -type=EntityType

import (
	"time"
)

// UID is the primary key for a user.
type UID int32

// Info represents information common to Node, Way, and Relation entities.
type Info struct {
	Version   int32
	UID       UID
	Timestamp time.Time
	Changeset int64
	User      string
	Visible   bool
}

// Entity is one of *Node, *Way or *Relation.
type Entity interface {
	isEntity() // prevents extensions

	GetID() ID

	GetType() EntityType

	GetTags() Tags

	GetInfo() *Info
}

// ID is the primary key of an entity.  Nodes, ways and relations each have
// their own id space.
type ID int64

// Node represents a specific point on the earth's surface defined by its
// latitude and longitude. Each node comprises at least an id number and a
// pair of coordinates.
//
// Coordinates are kept in nanodegrees, with the block's granularity and
// offset already applied.
type Node struct {
	ID      ID
	Tags    Tags
	Info    *Info
	NanoLat int64
	NanoLon int64
}

var _ Entity = (*Node)(nil)

func (n *Node) isEntity() {}

func (n *Node) GetID() ID {
	return n.ID
}

func (n *Node) GetType() EntityType {
	return NODE
}

func (n *Node) GetTags() Tags {
	return n.Tags
}

func (n *Node) GetInfo() *Info {
	return n.Info
}

// Lat returns the latitude of the node.
func (n *Node) Lat() Degrees {
	return FromNanoDegrees(n.NanoLat)
}

// Lon returns the longitude of the node.
func (n *Node) Lon() Degrees {
	return FromNanoDegrees(n.NanoLon)
}

// Way is an ordered list of between 2 and 2,000 nodes that define a polyline.
type Way struct {
	ID      ID
	Tags    Tags
	Info    *Info
	NodeIDs []ID
}

var _ Entity = (*Way)(nil)

func (w *Way) isEntity() {}

func (w *Way) GetID() ID {
	return w.ID
}

func (w *Way) GetType() EntityType {
	return WAY
}

func (w *Way) GetTags() Tags {
	return w.Tags
}

func (w *Way) GetInfo() *Info {
	return w.Info
}

// EntityType is an enumeration of PBF entity types.
type EntityType int32

const (
	// NODE denotes that the member is a node.
	NODE EntityType = iota

	// WAY denotes that the member is a way.
	WAY

	// RELATION denotes that the member is a relation.
	RELATION
)

// Member is a reference from a relation to another entity.  Type and ID
// together identify the referenced entity.
type Member struct {
	ID   ID
	Type EntityType
	Role string
}

// Relation is a multipurpose data structure that documents a relationship
// between two or more data entities (nodes, ways, and/or other relations).
type Relation struct {
	ID      ID
	Tags    Tags
	Info    *Info
	Members []Member
}

var _ Entity = (*Relation)(nil)

func (r *Relation) isEntity() {}

func (r *Relation) GetID() ID {
	return r.ID
}

func (r *Relation) GetType() EntityType {
	return RELATION
}

func (r *Relation) GetTags() Tags {
	return r.Tags
}

func (r *Relation) GetInfo() *Info {
	return r.Info
}

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
	"iter"
	"time"

	"m4o.io/pbf/v3/internal/pb"
	"m4o.io/pbf/v3/model"
)

// Block is the decoded content of a blob: a HeaderBlock, a *PrimitiveBlock
// or an UnknownBlock.
type Block interface {
	isBlock()
}

// HeaderBlock is the decoded content of an OSMHeader blob.
type HeaderBlock struct {
	model.Header
}

func (HeaderBlock) isBlock() {}

// UnknownBlock stands for a blob whose type is neither OSMHeader nor
// OSMData.  Its payload is left uninterpreted.
type UnknownBlock struct {
	Type string
}

func (UnknownBlock) isBlock() {}

// PrimitiveBlock is the decoded content of an OSMData blob.  Groups and
// their elements are decoded lazily, each time they are iterated.  Entities
// copy what they need out of the block and may outlive it.
type PrimitiveBlock struct {
	blk     *pb.PrimitiveBlock
	strings stringTable
}

func (*PrimitiveBlock) isBlock() {}

func newPrimitiveBlock(blk *pb.PrimitiveBlock) *PrimitiveBlock {
	return &PrimitiveBlock{blk: blk, strings: blk.GetStringtable().GetS()}
}

// Granularity is the size, in nanodegrees, of one coordinate unit.
func (b *PrimitiveBlock) Granularity() int32 {
	return b.blk.GetGranularity()
}

// LatOffset is added, in nanodegrees, to every latitude of the block.
func (b *PrimitiveBlock) LatOffset() int64 {
	return b.blk.GetLatOffset()
}

// LonOffset is added, in nanodegrees, to every longitude of the block.
func (b *PrimitiveBlock) LonOffset() int64 {
	return b.blk.GetLonOffset()
}

// DateGranularity is the size, in milliseconds, of one timestamp unit.
func (b *PrimitiveBlock) DateGranularity() int32 {
	return b.blk.GetDateGranularity()
}

// Groups iterates the primitive groups of the block in file order.
func (b *PrimitiveBlock) Groups() iter.Seq[*PrimitiveGroup] {
	return func(yield func(*PrimitiveGroup) bool) {
		for _, grp := range b.blk.GetPrimitivegroup() {
			if !yield(&PrimitiveGroup{blk: b, grp: grp}) {
				return
			}
		}
	}
}

// Entities iterates every entity of the block.  Within a group, dense nodes
// come first, followed by nodes, ways and relations.  An element that cannot
// be decoded is yielded as an error and iteration goes on with the next one.
func (b *PrimitiveBlock) Entities() iter.Seq2[model.Entity, error] {
	return func(yield func(model.Entity, error) bool) {
		for grp := range b.Groups() {
			if !grp.entities(yield) {
				return
			}
		}
	}
}

// nanoLat converts a raw latitude into nanodegrees.
func (b *PrimitiveBlock) nanoLat(lat int64) int64 {
	return model.ToNanoDegrees(b.blk.GetLatOffset(), b.blk.GetGranularity(), lat)
}

// nanoLon converts a raw longitude into nanodegrees.
func (b *PrimitiveBlock) nanoLon(lon int64) int64 {
	return model.ToNanoDegrees(b.blk.GetLonOffset(), b.blk.GetGranularity(), lon)
}

// timestamp converts a raw timestamp into UTC time.
func (b *PrimitiveBlock) timestamp(ts int64) time.Time {
	return toTimestamp(b.blk.GetDateGranularity(), ts)
}

// user resolves the user name at sid.  Index 0 is the empty string by
// convention, even in a block whose string table is empty.
func (b *PrimitiveBlock) user(sid int64) (string, error) {
	if sid == 0 && len(b.strings) == 0 {
		return "", nil
	}

	return b.strings.lookup(sid)
}

// PrimitiveGroup is a view of one group of a PrimitiveBlock.  Writers fill a
// single collection per group, but all four are always read.  Every
// accessor returns a fresh iterator; consuming one does not affect the
// others.
type PrimitiveGroup struct {
	blk *PrimitiveBlock
	grp *pb.PrimitiveGroup
}

// DenseNodes iterates the nodes of the group's dense batch, if any.
func (g *PrimitiveGroup) DenseNodes() iter.Seq2[*model.Node, error] {
	return func(yield func(*model.Node, error) bool) {
		dense := g.grp.GetDense()
		if dense == nil {
			return
		}

		dec := newDenseDecoder(g.blk, dense)

		for dec.more() {
			if !yield(dec.next()) {
				return
			}
		}
	}
}

// Nodes iterates the group's nodes in their explicit form.
func (g *PrimitiveGroup) Nodes() iter.Seq2[*model.Node, error] {
	return decodeAll(g.grp.GetNodes(), g.blk.decodeNode)
}

// Ways iterates the group's ways.
func (g *PrimitiveGroup) Ways() iter.Seq2[*model.Way, error] {
	return decodeAll(g.grp.GetWays(), g.blk.decodeWay)
}

// Relations iterates the group's relations.
func (g *PrimitiveGroup) Relations() iter.Seq2[*model.Relation, error] {
	return decodeAll(g.grp.GetRelations(), g.blk.decodeRelation)
}

// entities pushes every entity of the group to yield and reports whether
// the consumer wants more.
func (g *PrimitiveGroup) entities(yield func(model.Entity, error) bool) bool {
	return forward(g.DenseNodes(), yield) &&
		forward(g.Nodes(), yield) &&
		forward(g.Ways(), yield) &&
		forward(g.Relations(), yield)
}

func decodeAll[M any, E any](msgs []M, decode func(M) (E, error)) iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		for _, msg := range msgs {
			if !yield(decode(msg)) {
				return
			}
		}
	}
}

// forward pushes the elements of seq to yield as entities.  A failed
// element is forwarded as a nil entity.
func forward[E model.Entity](seq iter.Seq2[E, error], yield func(model.Entity, error) bool) bool {
	for e, err := range seq {
		if err != nil {
			if !yield(nil, err) {
				return false
			}

			continue
		}

		if !yield(e, nil) {
			return false
		}
	}

	return true
}

// toTimestamp converts a timestamp with a specific granularity, in units of
// milliseconds, to a UTC timestamp of type Time.
func toTimestamp(granularity int32, timestamp int64) time.Time {
	return time.UnixMilli(timestamp * int64(granularity)).UTC()
}

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

// Package pbtest writes OpenStreetMap PBF streams for tests.  It is a small,
// unoptimized encoder: every call writes one complete frame.
package pbtest

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"golang.org/x/exp/constraints"
	"google.golang.org/protobuf/proto"

	"m4o.io/pbf/v3/internal/pb"
	"m4o.io/pbf/v3/model"
)

const (
	DateGranularityMs = 1000
	Granularity       = 100
)

// WriteFrame writes a header length, a blob header of type typ and the
// encoded blob.
func WriteFrame(w io.Writer, typ string, blob []byte) error {
	hdr := &pb.BlobHeader{
		Type:     proto.String(typ),
		Datasize: proto.Int32(int32(len(blob))),
	}

	hb, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("could not marshal blob header: %w", err)
	}

	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(hb)))

	if _, err := w.Write(size[:]); err != nil {
		return fmt.Errorf("could not write header size: %w", err)
	}

	if _, err := w.Write(hb); err != nil {
		return fmt.Errorf("could not write blob header: %w", err)
	}

	if _, err := w.Write(blob); err != nil {
		return fmt.Errorf("could not write blob data: %w", err)
	}

	return nil
}

// WriteBlock packs msg and writes it as a blob of type typ.
func WriteBlock(w io.Writer, typ string, msg proto.Message, kind Kind) error {
	bb, err := Pack(msg, kind)
	if err != nil {
		return fmt.Errorf("could not pack %s: %w", typ, err)
	}

	return WriteFrame(w, typ, bb)
}

// WriteRawBlock packs the already encoded message b and writes it as a blob
// of type typ.
func WriteRawBlock(w io.Writer, typ string, b []byte, kind Kind) error {
	bb, err := PackBytes(b, kind)
	if err != nil {
		return fmt.Errorf("could not pack %s: %w", typ, err)
	}

	return WriteFrame(w, typ, bb)
}

// WriteHeader writes an OSMHeader blob.
func WriteHeader(w io.Writer, hdr model.Header, kind Kind) error {
	return WriteBlock(w, "OSMHeader", EncodeHeader(hdr), kind)
}

// WriteEntities writes an OSMData blob holding entities.  Nodes are written
// in dense form when dense is set.
func WriteEntities(w io.Writer, entities []model.Entity, dense bool, kind Kind) error {
	return WriteBlock(w, "OSMData", EncodeBlock(entities, dense), kind)
}

// EncodeHeader converts hdr into its schema message.
func EncodeHeader(hdr model.Header) *pb.HeaderBlock {
	hb := &pb.HeaderBlock{
		RequiredFeatures: hdr.RequiredFeatures,
		OptionalFeatures: hdr.OptionalFeatures,
	}

	if hdr.WritingProgram != "" {
		hb.Writingprogram = proto.String(hdr.WritingProgram)
	}

	if hdr.Source != "" {
		hb.Source = proto.String(hdr.Source)
	}

	if bbox := hdr.BoundingBox; bbox != nil {
		hb.Bbox = &pb.HeaderBBox{
			Left:   proto.Int64(bbox.Left.NanoDegrees()),
			Right:  proto.Int64(bbox.Right.NanoDegrees()),
			Top:    proto.Int64(bbox.Top.NanoDegrees()),
			Bottom: proto.Int64(bbox.Bottom.NanoDegrees()),
		}
	}

	if !hdr.OsmosisReplicationTimestamp.IsZero() {
		hb.OsmosisReplicationTimestamp = proto.Int64(hdr.OsmosisReplicationTimestamp.Unix())
	}

	if hdr.OsmosisReplicationSequenceNumber != 0 {
		hb.OsmosisReplicationSequenceNumber = proto.Int64(hdr.OsmosisReplicationSequenceNumber)
	}

	if hdr.OsmosisReplicationBaseURL != "" {
		hb.OsmosisReplicationBaseUrl = proto.String(hdr.OsmosisReplicationBaseURL)
	}

	return hb
}

// EncodeBlock converts entities into a primitive block with one group per
// entity type present, in the order nodes, ways, relations.
func EncodeBlock(entities []model.Entity, dense bool) *pb.PrimitiveBlock {
	bc := newBlockContext(entities)

	var (
		nodes     []*model.Node
		ways      []*model.Way
		relations []*model.Relation
	)

	for _, e := range entities {
		switch e := e.(type) {
		case *model.Node:
			nodes = append(nodes, e)
		case *model.Way:
			ways = append(ways, e)
		case *model.Relation:
			relations = append(relations, e)
		}
	}

	blk := &pb.PrimitiveBlock{
		Stringtable:     &pb.StringTable{S: bc.table.AsArray()},
		Granularity:     proto.Int32(Granularity),
		DateGranularity: proto.Int32(DateGranularityMs),
	}

	if len(nodes) > 0 {
		pg := &pb.PrimitiveGroup{}
		if dense {
			pg.Dense = bc.extractDenseNodes(nodes)
		} else {
			pg.Nodes = bc.extractNodes(nodes)
		}

		blk.Primitivegroup = append(blk.Primitivegroup, pg)
	}

	if len(ways) > 0 {
		blk.Primitivegroup = append(blk.Primitivegroup, &pb.PrimitiveGroup{Ways: bc.extractWays(ways)})
	}

	if len(relations) > 0 {
		blk.Primitivegroup = append(blk.Primitivegroup, &pb.PrimitiveGroup{Relations: bc.extractRelations(relations)})
	}

	return blk
}

type blockContext struct {
	table *Table
}

func newBlockContext(entities []model.Entity) *blockContext {
	strings := NewStrings()

	for _, e := range entities {
		for _, tag := range e.GetTags() {
			strings.Add(tag.Key)
			strings.Add(tag.Value)
		}

		if info := e.GetInfo(); info != nil {
			strings.Add(info.User)
		}

		if r, ok := e.(*model.Relation); ok {
			for _, m := range r.Members {
				strings.Add(m.Role)
			}
		}
	}

	return &blockContext{table: strings.CalcTable()}
}

func (bc *blockContext) extractDenseNodes(nodes []*model.Node) *pb.DenseNodes {
	ids := make([]int64, len(nodes))
	lats := make([]int64, len(nodes))
	lons := make([]int64, len(nodes))

	var keyValIDs []int32

	for i, n := range nodes {
		ids[i] = int64(n.ID)
		lats[i] = n.NanoLat / Granularity
		lons[i] = n.NanoLon / Granularity

		keyIDs, valIDs := bc.calcTagIDs(n.Tags)
		for j, k := range keyIDs {
			keyValIDs = append(keyValIDs, int32(k), int32(valIDs[j]))
		}

		keyValIDs = append(keyValIDs, 0)
	}

	dn := &pb.DenseNodes{
		Id:       calcDeltas(ids),
		Lat:      calcDeltas(lats),
		Lon:      calcDeltas(lons),
		KeysVals: keyValIDs,
	}

	if nodes[0].Info != nil {
		dn.Denseinfo = bc.extractDenseInfo(nodes)
	}

	return dn
}

// extractDenseInfo expects every node to carry an Info.
func (bc *blockContext) extractDenseInfo(nodes []*model.Node) *pb.DenseInfo {
	di := &pb.DenseInfo{}

	var (
		ts, cs     []int64
		uids, sids []int32
	)

	for _, n := range nodes {
		di.Version = append(di.Version, n.Info.Version)
		di.Visible = append(di.Visible, n.Info.Visible)
		ts = append(ts, fromTimestamp(DateGranularityMs, n.Info.Timestamp))
		cs = append(cs, n.Info.Changeset)
		uids = append(uids, int32(n.Info.UID))
		sids = append(sids, bc.table.IndexOf(n.Info.User))
	}

	di.Timestamp = calcDeltas(ts)
	di.Changeset = calcDeltas(cs)
	di.Uid = calcDeltas(uids)
	di.UserSid = calcDeltas(sids)

	return di
}

func (bc *blockContext) extractNodes(nodes []*model.Node) []*pb.Node {
	out := make([]*pb.Node, len(nodes))

	for i, n := range nodes {
		keyIDs, valIDs := bc.calcTagIDs(n.Tags)

		out[i] = &pb.Node{
			Id:   proto.Int64(int64(n.ID)),
			Keys: keyIDs,
			Vals: valIDs,
			Info: bc.toInfoPb(n.Info),
			Lat:  proto.Int64(n.NanoLat / Granularity),
			Lon:  proto.Int64(n.NanoLon / Granularity),
		}
	}

	return out
}

func (bc *blockContext) extractWays(ways []*model.Way) []*pb.Way {
	out := make([]*pb.Way, len(ways))

	for i, w := range ways {
		refs := make([]int64, len(w.NodeIDs))
		for j, r := range w.NodeIDs {
			refs[j] = int64(r)
		}

		keyIDs, valIDs := bc.calcTagIDs(w.Tags)

		out[i] = &pb.Way{
			Id:   proto.Int64(int64(w.ID)),
			Keys: keyIDs,
			Vals: valIDs,
			Info: bc.toInfoPb(w.Info),
			Refs: calcDeltas(refs),
		}
	}

	return out
}

func (bc *blockContext) extractRelations(relations []*model.Relation) []*pb.Relation {
	out := make([]*pb.Relation, len(relations))

	for i, r := range relations {
		keyIDs, valIDs := bc.calcTagIDs(r.Tags)
		memids := make([]int64, len(r.Members))
		roleids := make([]int32, len(r.Members))
		types := make([]pb.Relation_MemberType, len(r.Members))

		for j, m := range r.Members {
			memids[j] = int64(m.ID)
			roleids[j] = bc.table.IndexOf(m.Role)
			types[j] = pb.Relation_MemberType(m.Type)
		}

		out[i] = &pb.Relation{
			Id:       proto.Int64(int64(r.ID)),
			Keys:     keyIDs,
			Vals:     valIDs,
			Info:     bc.toInfoPb(r.Info),
			RolesSid: roleids,
			Memids:   calcDeltas(memids),
			Types:    types,
		}
	}

	return out
}

// calcTagIDs keeps the order of tags.
func (bc *blockContext) calcTagIDs(tags model.Tags) (keyIDs []uint32, valIDs []uint32) {
	for _, tag := range tags {
		keyIDs = append(keyIDs, uint32(bc.table.IndexOf(tag.Key)))
		valIDs = append(valIDs, uint32(bc.table.IndexOf(tag.Value)))
	}

	return keyIDs, valIDs
}

func (bc *blockContext) toInfoPb(info *model.Info) *pb.Info {
	if info == nil {
		return nil
	}

	return &pb.Info{
		Version:   proto.Int32(info.Version),
		Timestamp: proto.Int64(fromTimestamp(DateGranularityMs, info.Timestamp)),
		Changeset: proto.Int64(info.Changeset),
		Uid:       proto.Int32(int32(info.UID)),
		UserSid:   proto.Uint32(uint32(bc.table.IndexOf(info.User))),
		Visible:   proto.Bool(info.Visible),
	}
}

// calcDeltas calculates the delta-encoding of the values.
func calcDeltas[T constraints.Integer](values []T) []T {
	prev := T(0)
	deltas := make([]T, len(values))

	for i, v := range values {
		deltas[i] = v - prev
		prev = v
	}

	return deltas
}

// fromTimestamp converts a UTC timestamp to a timestamp with a specific
// granularity, in units of milliseconds.
func fromTimestamp(granularity int64, timestamp time.Time) int64 {
	return timestamp.UnixMilli() / granularity
}

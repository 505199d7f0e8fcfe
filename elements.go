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

	"m4o.io/pbf/v3/internal/pb"
	"m4o.io/pbf/v3/model"
)

// decodeNode converts a node in its explicit form.  Its id and coordinates
// are absolute.
func (b *PrimitiveBlock) decodeNode(node *pb.Node) (*model.Node, error) {
	tags, err := b.strings.tags(node.GetKeys(), node.GetVals())
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", node.GetId(), err)
	}

	info, err := b.decodeInfo(node.GetInfo())
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", node.GetId(), err)
	}

	return &model.Node{
		ID:      model.ID(node.GetId()),
		Tags:    tags,
		Info:    info,
		NanoLat: b.nanoLat(node.GetLat()),
		NanoLon: b.nanoLon(node.GetLon()),
	}, nil
}

func (b *PrimitiveBlock) decodeWay(way *pb.Way) (*model.Way, error) {
	tags, err := b.strings.tags(way.GetKeys(), way.GetVals())
	if err != nil {
		return nil, fmt.Errorf("way %d: %w", way.GetId(), err)
	}

	info, err := b.decodeInfo(way.GetInfo())
	if err != nil {
		return nil, fmt.Errorf("way %d: %w", way.GetId(), err)
	}

	return &model.Way{
		ID:      model.ID(way.GetId()),
		Tags:    tags,
		Info:    info,
		NodeIDs: decodeDeltas(way.GetRefs(), toID),
	}, nil
}

func (b *PrimitiveBlock) decodeRelation(rel *pb.Relation) (*model.Relation, error) {
	tags, err := b.strings.tags(rel.GetKeys(), rel.GetVals())
	if err != nil {
		return nil, fmt.Errorf("relation %d: %w", rel.GetId(), err)
	}

	info, err := b.decodeInfo(rel.GetInfo())
	if err != nil {
		return nil, fmt.Errorf("relation %d: %w", rel.GetId(), err)
	}

	members, err := b.decodeMembers(rel)
	if err != nil {
		return nil, fmt.Errorf("relation %d: %w", rel.GetId(), err)
	}

	return &model.Relation{
		ID:      model.ID(rel.GetId()),
		Tags:    tags,
		Info:    info,
		Members: members,
	}, nil
}

// decodeMembers walks memids, roles_sid and types in lockstep.  Member ids
// are delta coded from 0 for every relation.
func (b *PrimitiveBlock) decodeMembers(rel *pb.Relation) ([]model.Member, error) {
	memids, roles, types := rel.GetMemids(), rel.GetRolesSid(), rel.GetTypes()

	n := len(memids)
	if len(roles) != n || len(types) != n {
		return nil, fmt.Errorf("%w: %d memids, %d roles, %d types",
			ErrMisalignedArrays, n, len(roles), len(types))
	}

	if n == 0 {
		return nil, nil
	}

	members := make([]model.Member, n)

	var memid delta[int64]

	for i := range members {
		typ, err := decodeMemberType(types[i])
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}

		role, err := b.strings.lookup(int64(roles[i]))
		if err != nil {
			return nil, fmt.Errorf("member %d role: %w", i, err)
		}

		members[i] = model.Member{
			ID:   model.ID(memid.next(memids[i])),
			Type: typ,
			Role: role,
		}
	}

	return members, nil
}

// decodeInfo converts the optional metadata of an element.  A missing
// message gives a nil Info.
func (b *PrimitiveBlock) decodeInfo(info *pb.Info) (*model.Info, error) {
	if info == nil {
		return nil, nil
	}

	user, err := b.user(int64(info.GetUserSid()))
	if err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}

	visible := true
	if info.Visible != nil {
		visible = info.GetVisible()
	}

	return &model.Info{
		Version:   info.GetVersion(),
		UID:       model.UID(info.GetUid()),
		Timestamp: b.timestamp(info.GetTimestamp()),
		Changeset: info.GetChangeset(),
		User:      user,
		Visible:   visible,
	}, nil
}

// decodeMemberType converts a relation member type to an EntityType.
func decodeMemberType(mt pb.Relation_MemberType) (model.EntityType, error) {
	switch mt {
	case pb.Relation_NODE:
		return model.NODE, nil
	case pb.Relation_WAY:
		return model.WAY, nil
	case pb.Relation_RELATION:
		return model.RELATION, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownMemberType, int32(mt))
	}
}

func toID(v int64) model.ID {
	return model.ID(v)
}

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

package pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func TestDefaults(t *testing.T) {
	blk := &PrimitiveBlock{}

	assert.Equal(t, int32(100), blk.GetGranularity())
	assert.Equal(t, int32(1000), blk.GetDateGranularity())
	assert.Zero(t, blk.GetLatOffset())
	assert.Equal(t, int32(-1), (&Info{}).GetVersion())
	assert.Equal(t, int32(1000), (*PrimitiveBlock)(nil).GetDateGranularity())
}

func TestRequiredFields(t *testing.T) {
	_, err := proto.Marshal(&Node{Id: proto.Int64(1)})
	require.Error(t, err)

	b, err := proto.MarshalOptions{AllowPartial: true}.Marshal(&Node{Id: proto.Int64(1)})
	require.NoError(t, err)

	assert.Error(t, proto.Unmarshal(b, &Node{}))
}

func TestPackedZigzag(t *testing.T) {
	b, err := proto.Marshal(&DenseNodes{Id: []int64{1, -1}})
	require.NoError(t, err)

	assert.Equal(t, []byte{0x0a, 0x02, 0x02, 0x01}, b)
}

func TestExpandedRepeatedAccepted(t *testing.T) {
	// id=1, then keys 5 and 6 as two unpacked varints
	way := &Way{}
	require.NoError(t, proto.Unmarshal([]byte{0x08, 0x01, 0x10, 0x05, 0x10, 0x06}, way))

	assert.Equal(t, int64(1), way.GetId())
	assert.Equal(t, []uint32{5, 6}, way.GetKeys())
}

func TestUnknownMemberTypeKept(t *testing.T) {
	b, err := proto.Marshal(&Relation{
		Id:    proto.Int64(3),
		Types: []Relation_MemberType{Relation_WAY, 7},
	})
	require.NoError(t, err)

	rel := &Relation{}
	require.NoError(t, proto.Unmarshal(b, rel))

	assert.Equal(t, []Relation_MemberType{Relation_WAY, 7}, rel.GetTypes())
	assert.Equal(t, "RELATION", Relation_RELATION.String())
}

func TestBlobData(t *testing.T) {
	b, err := proto.Marshal(&Blob{
		RawSize: proto.Int32(4),
		Data:    &Blob_ZlibData{ZlibData: []byte("zzz")},
	})
	require.NoError(t, err)

	blob := &Blob{}
	require.NoError(t, proto.Unmarshal(b, blob))

	assert.Equal(t, []byte("zzz"), blob.GetZlibData())
	assert.Nil(t, blob.GetRaw())
	assert.Equal(t, int32(4), blob.GetRawSize())
}

func TestHeaderBlock(t *testing.T) {
	b, err := proto.Marshal(&HeaderBlock{
		RequiredFeatures:            []string{"OsmSchema-V0.6"},
		OsmosisReplicationTimestamp: proto.Int64(1700000000),
		OsmosisReplicationBaseUrl:   proto.String("https://planet.openstreetmap.org/replication/minute"),
	})
	require.NoError(t, err)

	hb := &HeaderBlock{}
	require.NoError(t, proto.Unmarshal(b, hb))

	assert.Equal(t, []string{"OsmSchema-V0.6"}, hb.GetRequiredFeatures())
	assert.Equal(t, int64(1700000000), hb.GetOsmosisReplicationTimestamp())
	assert.Nil(t, hb.GetBbox())
	assert.Empty(t, hb.GetWritingprogram())
}

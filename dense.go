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

// denseDecoder walks the columnar arrays of a dense node batch, one node
// per call to next.
type denseDecoder struct {
	blk *PrimitiveBlock
	dn  *pb.DenseNodes

	i  int // next node
	kv int // next unread index of keys_vals

	id, lat, lon delta[int64]

	info *denseInfoDecoder
}

func newDenseDecoder(blk *PrimitiveBlock, dn *pb.DenseNodes) *denseDecoder {
	d := &denseDecoder{blk: blk, dn: dn}
	if di := dn.GetDenseinfo(); di != nil {
		d.info = &denseInfoDecoder{blk: blk, di: di}
	}

	return d
}

// more reports whether another node can be decoded.  The batch ends as soon
// as any of the id, lat or lon arrays is exhausted.
func (d *denseDecoder) more() bool {
	return d.i < len(d.dn.GetId()) && d.i < len(d.dn.GetLat()) && d.i < len(d.dn.GetLon())
}

// next decodes the next node.  A node whose tags or metadata cannot be
// decoded is returned as an error; the batch stays in step and may be
// continued.
func (d *denseDecoder) next() (*model.Node, error) {
	i := d.i
	d.i++

	id := d.id.next(d.dn.GetId()[i])
	lat := d.lat.next(d.dn.GetLat()[i])
	lon := d.lon.next(d.dn.GetLon()[i])

	// the tag segment must be consumed even when the node fails, or every
	// later node would read the wrong tags
	tags, tagsErr := d.blk.strings.denseTags(d.nextTagSegment())

	var info *model.Info

	if d.info != nil {
		var err error
		if info, err = d.info.decode(i); err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
	}

	if tagsErr != nil {
		return nil, fmt.Errorf("node %d: %w", id, tagsErr)
	}

	return &model.Node{
		ID:      model.ID(id),
		Tags:    tags,
		Info:    info,
		NanoLat: d.blk.nanoLat(lat),
		NanoLon: d.blk.nanoLon(lon),
	}, nil
}

// nextTagSegment returns the (key, value) pairs of the current node and
// moves the cursor past them.  A segment ends at a 0 delimiter, which is
// consumed, or where keys_vals runs out of full pairs.
func (d *denseDecoder) nextTagSegment() []int32 {
	kv := d.dn.GetKeysVals()
	start := d.kv

	end := start
	for end+1 < len(kv) && kv[end] != 0 {
		end += 2
	}

	switch {
	case end >= len(kv):
		d.kv = len(kv)
	case kv[end] == 0:
		d.kv = end + 1
	default:
		// dangling key without a value
		d.kv = len(kv)
	}

	if start >= end {
		return nil
	}

	return kv[start:end]
}

// denseInfoDecoder rebuilds the metadata of dense nodes.  Timestamp,
// changeset, uid and user_sid are delta coded across the batch; version and
// visible are not.
type denseInfoDecoder struct {
	blk *PrimitiveBlock
	di  *pb.DenseInfo

	timestamp, changeset delta[int64]
	uid, userSid         delta[int32]
}

// decode returns the metadata of node i.  It must be called for every node
// in order, since the running sums advance on each call.  An empty column
// is treated as absent; a column that is present but shorter than the batch
// is an error.
func (d *denseInfoDecoder) decode(i int) (*model.Info, error) {
	version, err := column(d.di.GetVersion(), i, "version")
	if err != nil {
		return nil, err
	}

	timestamp, err := column(d.di.GetTimestamp(), i, "timestamp")
	if err != nil {
		return nil, err
	}

	changeset, err := column(d.di.GetChangeset(), i, "changeset")
	if err != nil {
		return nil, err
	}

	uid, err := column(d.di.GetUid(), i, "uid")
	if err != nil {
		return nil, err
	}

	userSid, err := column(d.di.GetUserSid(), i, "user_sid")
	if err != nil {
		return nil, err
	}

	visible := true
	if len(d.di.GetVisible()) > 0 {
		if visible, err = column(d.di.GetVisible(), i, "visible"); err != nil {
			return nil, err
		}
	}

	info := &model.Info{
		Version:   version,
		Timestamp: d.blk.timestamp(d.timestamp.next(timestamp)),
		Changeset: d.changeset.next(changeset),
		UID:       model.UID(d.uid.next(uid)),
		Visible:   visible,
	}

	if info.User, err = d.blk.user(int64(d.userSid.next(userSid))); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}

	return info, nil
}

// column returns element i of a dense info column, or the zero value when
// the column is absent.
func column[T any](vals []T, i int, name string) (T, error) {
	var zero T

	switch {
	case len(vals) == 0:
		return zero, nil
	case i >= len(vals):
		return zero, fmt.Errorf("%w: dense info %s has %d entries, need %d", ErrMisalignedArrays, name, len(vals), i+1)
	default:
		return vals[i], nil
	}
}

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
	"time"

	"m4o.io/pbf/v3/internal/pb"
	"m4o.io/pbf/v3/model"
)

// decodeHeader converts the header block of a file.
func decodeHeader(hb *pb.HeaderBlock) model.Header {
	header := model.Header{
		RequiredFeatures:                 hb.GetRequiredFeatures(),
		OptionalFeatures:                 hb.GetOptionalFeatures(),
		WritingProgram:                   hb.GetWritingprogram(),
		Source:                           hb.GetSource(),
		OsmosisReplicationSequenceNumber: hb.GetOsmosisReplicationSequenceNumber(),
		OsmosisReplicationBaseURL:        hb.GetOsmosisReplicationBaseUrl(),
	}

	if bbox := hb.GetBbox(); bbox != nil {
		header.BoundingBox = &model.BoundingBox{
			Left:   model.FromNanoDegrees(bbox.GetLeft()),
			Right:  model.FromNanoDegrees(bbox.GetRight()),
			Top:    model.FromNanoDegrees(bbox.GetTop()),
			Bottom: model.FromNanoDegrees(bbox.GetBottom()),
		}
	}

	// seconds since the epoch
	if hb.OsmosisReplicationTimestamp != nil {
		header.OsmosisReplicationTimestamp = time.Unix(hb.GetOsmosisReplicationTimestamp(), 0).UTC()
	}

	return header
}

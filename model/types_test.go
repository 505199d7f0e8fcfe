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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/pbf/v3/model"
)

func TestDegrees_Angle(t *testing.T) {
	assert.True(t, model.Angle(0.78539816).EqualWithin(model.Degrees(45.0).Angle(), model.E7))
}

func TestDegrees_Fixed(t *testing.T) {
	d := model.Degrees(53.123456789)

	assert.Equal(t, int64(53_123_456_789), d.NanoDegrees())
	assert.Equal(t, int64(-53_123_456_789), (-d).NanoDegrees())
}

func TestNanoDegrees(t *testing.T) {
	tests := []struct {
		name        string
		offset      int64
		granularity int32
		coordinate  int64
		want        int64
	}{
		{"default granularity", 0, 100, 515_074_000, 51_507_400_000},
		{"negative", 0, 100, -1_278_000, -127_800_000},
		{"offset", 1_000, 100, 5, 1_500},
		{"coarse granularity", 0, 1_000, 6, 6_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nano := model.ToNanoDegrees(tt.offset, tt.granularity, tt.coordinate)
			assert.Equal(t, tt.want, nano)
			assert.Equal(t, nano, model.FromNanoDegrees(nano).NanoDegrees())
		})
	}
}

func TestAngle_Degrees(t *testing.T) {
	assert.True(t, model.Degrees(-12.5).EqualWithin(model.Degrees(-12.5).Angle().Degrees(), model.E7))
	assert.True(t, model.Degrees(180).EqualWithin(model.Angle(3.14159265358979).Degrees(), model.E7))
}

func TestDegrees_EqualWithin(t *testing.T) {
	assert.True(t, model.Degrees(53.123450).EqualWithin(model.Degrees(53.123454), model.E5))
	assert.False(t, model.Degrees(53.123450).EqualWithin(model.Degrees(53.123455), model.E5))
}

func TestDegrees_String(t *testing.T) {
	assert.Equal(t, "53° 7' 24.42\"", model.Degrees(53.123450).String())
	assert.Equal(t, "-0° 7' 40.08\"", model.Degrees(-0.1278).String())
}

func TestDegrees_MarshalJSON(t *testing.T) {
	b, err := model.FromNanoDegrees(-127_800_000).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "-0.1278", string(b))
}

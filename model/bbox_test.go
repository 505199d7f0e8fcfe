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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/pbf/v3/model"
)

var london = &model.BoundingBox{Top: 51.69344, Left: -0.511482, Bottom: 51.28554, Right: 0.335437}

func TestInitialBoundingBox(t *testing.T) {
	initial := model.InitialBoundingBox()

	assert.True(t, initial.IsEmpty())
	assert.False(t, initial.Contains(0, 0))
	assert.False(t, london.IsEmpty())
}

func TestBoundingBox_SinglePoint(t *testing.T) {
	bbox := model.InitialBoundingBox()
	bbox.ExpandWithLatLng(51.5, -0.1)

	assert.False(t, bbox.IsEmpty())
	assert.Equal(t, &model.BoundingBox{Top: 51.5, Left: -0.1, Bottom: 51.5, Right: -0.1}, bbox)
}

func TestBoundingBox_EqualWithin(t *testing.T) {
	shifted := &model.BoundingBox{
		Top:    london.Top + model.Degrees(model.E6),
		Left:   london.Left + model.Degrees(model.E6),
		Bottom: london.Bottom + model.Degrees(model.E6),
		Right:  london.Right + model.Degrees(model.E6),
	}

	assert.True(t, london.EqualWithin(london, model.E9))
	assert.True(t, london.EqualWithin(shifted, model.E5))
	assert.False(t, london.EqualWithin(shifted, model.E7))
}

func TestBoundingBox_Contains(t *testing.T) {
	eps := model.Degrees(model.E5)

	tests := []struct {
		name     string
		lat      model.Degrees
		lng      model.Degrees
		expected bool
	}{
		{"corner bottom/left", london.Bottom, london.Left, true},
		{"corner top/right", london.Top, london.Right, true},
		{"west of left", london.Bottom, london.Left - eps, false},
		{"south of bottom", london.Bottom - eps, london.Left, false},
		{"east of right", london.Top, london.Right + eps, false},
		{"north of top", london.Top + eps, london.Right, false},
		{"inside", london.Top - eps, london.Right - eps, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, london.Contains(tt.lat, tt.lng))
		})
	}
}

func TestBoundingBox_Expand(t *testing.T) {
	byPoint := model.InitialBoundingBox()
	byPoint.ExpandWithLatLng(-45, 90)
	byPoint.ExpandWithLatLng(45, -90)

	byBox := model.InitialBoundingBox()
	byBox.ExpandWithBoundingBox(&model.BoundingBox{Top: 45, Left: 70, Bottom: 20, Right: 90})
	byBox.ExpandWithBoundingBox(&model.BoundingBox{Top: -25, Left: -90, Bottom: -45, Right: -70})

	want := &model.BoundingBox{Top: 45, Left: -90, Bottom: -45, Right: 90}

	assert.Equal(t, want, byPoint)
	assert.Equal(t, want, byBox)
}

func TestBoundingBox_Span(t *testing.T) {
	width, height := london.Span()
	assert.True(t, model.Degrees(0.846919).EqualWithin(width.Degrees(), model.E7))
	assert.True(t, model.Degrees(0.4079).EqualWithin(height.Degrees(), model.E7))

	// Fiji straddles the antimeridian
	fiji := &model.BoundingBox{Top: -12.5, Left: 177, Bottom: -21, Right: -178}
	width, height = fiji.Span()
	assert.True(t, model.Degrees(5).EqualWithin(width.Degrees(), model.E7))
	assert.True(t, model.Degrees(8.5).EqualWithin(height.Degrees(), model.E7))

	point := model.InitialBoundingBox()
	point.ExpandWithLatLng(51.5, -0.1)
	width, height = point.Span()
	assert.Zero(t, width)
	assert.Zero(t, height)

	width, height = model.InitialBoundingBox().Span()
	assert.Zero(t, width)
	assert.Zero(t, height)
}

func TestBoundingBox_String(t *testing.T) {
	assert.Equal(t, "[(51.69344, -0.511482) (51.28554, 0.335437)]", london.String())
}

func TestBoundingBox_JSON(t *testing.T) {
	b, err := json.Marshal(london)
	require.NoError(t, err)

	assert.JSONEq(t, `{"top":51.69344,"left":-0.511482,"bottom":51.28554,"right":0.335437}`, string(b))

	var got model.BoundingBox
	require.NoError(t, json.Unmarshal(b, &got))
	assert.True(t, got.EqualWithin(london, model.E9))
}

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

package model

import (
	"math"
	"strconv"
)

// ftoa formats a float with the shortest representation that survives a
// round trip once rounded to nanodegree precision.
func ftoa(f float64) string {
	return strconv.FormatFloat(math.Round(f*nanosPerDegree)/nanosPerDegree, 'f', -1, 64)
}

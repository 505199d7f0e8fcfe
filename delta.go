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
	"golang.org/x/exp/constraints"
)

// delta reconstructs delta coded values by keeping a running sum.  The zero
// value starts from 0.
type delta[T constraints.Signed] struct {
	sum T
}

// next adds d to the running sum and returns the new value.
func (dd *delta[T]) next(d T) T {
	dd.sum += d

	return dd.sum
}

// decodeDeltas returns the prefix sums of deltas, starting from 0.
func decodeDeltas[T constraints.Signed, U any](deltas []T, conv func(T) U) []U {
	var dd delta[T]

	values := make([]U, len(deltas))
	for i, d := range deltas {
		values[i] = conv(dd.next(d))
	}

	return values
}

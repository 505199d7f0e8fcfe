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

package cli

import (
	"os"

	"github.com/spf13/pflag"
)

// -- *os.File Value
type outputValue struct {
	value    **os.File
	typename string
}

// NewOutputValue creates a pflag Value for an *os.File that is created, or
// truncated, when the flag is set.
func NewOutputValue(def *os.File, p **os.File, typename string) pflag.Value {
	v := &outputValue{
		value:    p,
		typename: typename,
	}
	*v.value = def

	return v
}

func (o *outputValue) Set(val string) error {
	f, err := os.Create(val)
	if err != nil {
		return err
	}

	*o.value = f

	return nil
}

func (o *outputValue) Type() string {
	return o.typename
}

func (o *outputValue) String() string {
	if *o.value == nil {
		return ""
	}

	return (*o.value).Name()
}

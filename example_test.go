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

package pbf_test

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"m4o.io/pbf/v3"
	"m4o.io/pbf/v3/internal/pbtest"
	"m4o.io/pbf/v3/model"
)

// sample builds a small PBF stream in memory.
func sample() *bytes.Buffer {
	var buf bytes.Buffer

	hdr := model.Header{
		RequiredFeatures: []string{model.FeatureOsmSchema, model.FeatureDenseNodes},
		WritingProgram:   "example",
	}

	if err := pbtest.WriteHeader(&buf, hdr, pbtest.Zlib); err != nil {
		log.Fatal(err)
	}

	entities := []model.Entity{
		&model.Node{ID: 1, NanoLat: 51_507_400_000, NanoLon: -127_800_000},
		&model.Node{ID: 2, NanoLat: 51_507_500_000, NanoLon: -127_900_000},
		&model.Way{ID: 3, Tags: model.Tags{{Key: "highway", Value: "footway"}}, NodeIDs: []model.ID{1, 2}},
	}

	if err := pbtest.WriteEntities(&buf, entities, true, pbtest.Zlib); err != nil {
		log.Fatal(err)
	}

	return &buf
}

func Example() {
	r := pbf.NewReader(sample())

	var nc, wc, rc uint64

	err := r.ForEach(context.Background(), func(e model.Entity) error {
		switch e.(type) {
		case *model.Node:
			// Process Node v.
			nc++
		case *model.Way:
			// Process Way v.
			wc++
		case *model.Relation:
			// Process Relation v.
			rc++
		}

		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Nodes: %d, Ways: %d, Relations: %d\n", nc, wc, rc)
	// Output:
	// Nodes: 2, Ways: 1, Relations: 0
}

func ExampleBlobReader() {
	br := pbf.NewBlobReader(sample())

	for blob, err := range br.All() {
		if err != nil {
			log.Fatal(err)
		}

		block, err := blob.Decode()
		if err != nil {
			log.Fatal(err)
		}

		switch block := block.(type) {
		case pbf.HeaderBlock:
			fmt.Println("header written by", block.WritingProgram)
		case *pbf.PrimitiveBlock:
			for grp := range block.Groups() {
				for n, err := range grp.DenseNodes() {
					if err != nil {
						log.Fatal(err)
					}

					fmt.Printf("node %d at %.4f, %.4f\n", n.ID, n.Lat(), n.Lon())
				}
			}
		}
	}
	// Output:
	// header written by example
	// node 1 at 51.5074, -0.1278
	// node 2 at 51.5075, -0.1279
}

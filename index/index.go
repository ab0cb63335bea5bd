// Copyright 2025 Poiesic Systems
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


package index

import (
	"sort"
	"sync/atomic"

	"github.com/poiesic/feria/core"
)

// DefaultThreshold is the minimum cosine similarity for a match.
const DefaultThreshold = 0.35

// generation is one immutable snapshot of the index. Rebuild swaps the
// whole generation so readers never see a partial corpus.
type generation struct {
	ids     []core.ID
	vectors [][]float32
}

// Index is an in-memory inner-product index over item embeddings.
// Vectors are expected to be L2-normalized, so the inner product is the
// cosine similarity. Query and Rebuild are safe for concurrent use.
type Index struct {
	current   atomic.Pointer[generation]
	threshold float32
}

// Option configures an Index.
type Option func(*Index)

// WithThreshold sets the minimum similarity score for a match.
func WithThreshold(threshold float32) Option {
	return func(idx *Index) {
		idx.threshold = threshold
	}
}

// New creates an empty index.
func New(opts ...Option) *Index {
	idx := &Index{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(idx)
	}
	idx.current.Store(&generation{})
	return idx
}

// Rebuild replaces the entire index contents atomically. Queries in
// flight keep reading the previous generation.
func (idx *Index) Rebuild(entries []core.IndexEntry) {
	gen := &generation{
		ids:     make([]core.ID, len(entries)),
		vectors: make([][]float32, len(entries)),
	}
	for i, entry := range entries {
		gen.ids[i] = entry.ItemId
		gen.vectors[i] = entry.Vector
	}
	idx.current.Store(gen)
}

// Query returns up to k matches above the similarity threshold, ordered
// by score descending. Ties keep insertion order. An empty index returns
// an empty slice.
func (idx *Index) Query(vector []float32, k int) []core.Match {
	gen := idx.current.Load()
	if len(gen.ids) == 0 || k <= 0 {
		return []core.Match{}
	}

	matches := make([]core.Match, 0, len(gen.ids))
	for i, candidate := range gen.vectors {
		score := dot(vector, candidate)
		if score < idx.threshold {
			continue
		}
		matches = append(matches, core.Match{ItemId: gen.ids[i], Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// Len reports the number of indexed vectors.
func (idx *Index) Len() int {
	return len(idx.current.Load().ids)
}

func dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

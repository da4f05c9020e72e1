// Package similarity computes content-similarity neighbor lists over the
// catalog's vector space. The catalog never changes after build, so a full
// O(catalog) scan per call is the whole index.
package similarity

import (
	"sort"

	"github.com/FACorreiaa/go-places-recommender/internal/types"
	"github.com/FACorreiaa/go-places-recommender/internal/vectorizer"
)

// Index ranks places by cosine similarity against a query vector.
type Index struct {
	space *vectorizer.VectorSpace
	size  int // catalog size; place ids are 1..size
}

// NewIndex builds an index over the given vector space.
func NewIndex(space *vectorizer.VectorSpace, catalogSize int) *Index {
	return &Index{space: space, size: catalogSize}
}

// Neighbors returns up to k places ranked by descending cosine similarity to
// vec, ties broken by ascending place id. excludeID removes the query place
// from its own neighbor list; pass 0 to keep everything. Places with zero
// similarity are never returned, so the result may be shorter than k.
func (idx *Index) Neighbors(vec vectorizer.Vector, excludeID, k int) []types.SimilarityResult {
	if k <= 0 || len(vec) == 0 {
		return nil
	}
	results := make([]types.SimilarityResult, 0, idx.size)
	for id := 1; id <= idx.size; id++ {
		if id == excludeID {
			continue
		}
		other, ok := idx.space.VectorFor(id)
		if !ok {
			continue
		}
		score := vec.Dot(other)
		if score <= 0 {
			continue
		}
		if score > 1 {
			score = 1 // clamp float drift on identical vectors
		}
		results = append(results, types.SimilarityResult{PlaceID: id, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PlaceID < results[j].PlaceID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// SimilarTo ranks neighbors of an existing place using its own prebuilt
// vector, always excluding the place itself.
func (idx *Index) SimilarTo(placeID, k int) []types.SimilarityResult {
	vec, ok := idx.space.VectorFor(placeID)
	if !ok {
		return nil
	}
	return idx.Neighbors(vec, placeID, k)
}

// Package ranking blends content similarity and popularity into the feed and
// search orderings. All ranking state is derived once at build time from the
// immutable catalog.
package ranking

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/FACorreiaa/go-places-recommender/internal/catalog"
	"github.com/FACorreiaa/go-places-recommender/internal/similarity"
	"github.com/FACorreiaa/go-places-recommender/internal/types"
	"github.com/FACorreiaa/go-places-recommender/internal/vectorizer"
)

// Relevance weights for textual search matches. Exact field matches outrank
// partial ones, and name outranks city outranks state.
const (
	exactNameWeight    = 10
	exactCityWeight    = 8
	exactStateWeight   = 6
	partialNameWeight  = 5
	partialCityWeight  = 3
	partialStateWeight = 2
)

// Config carries the ranking policy knobs exposed through app config.
type Config struct {
	// SimilarityFloor is the minimum cosine similarity for a fuzzy match to
	// join the search candidate set.
	SimilarityFloor float64
	// SimilarityWeight scales cosine similarity into the same range as the
	// textual relevance weights when blending search scores.
	SimilarityWeight float64
}

// DefaultConfig mirrors the embedded config.yml values.
func DefaultConfig() Config {
	return Config{SimilarityFloor: 0.1, SimilarityWeight: 5}
}

// Engine serves feed and search rankings. Immutable after New; safe for
// unbounded concurrent reads.
type Engine struct {
	store      *catalog.Store
	space      *vectorizer.VectorSpace
	index      *similarity.Index
	cfg        Config
	popularity []float64 // by place id - 1
	feedOrder  []int     // place ids, popularity desc then id asc
}

// New derives popularity scores and the stable feed order from the catalog.
func New(store *catalog.Store, space *vectorizer.VectorSpace, index *similarity.Index, cfg Config, logger *slog.Logger) *Engine {
	e := &Engine{
		store:      store,
		space:      space,
		index:      index,
		cfg:        cfg,
		popularity: make([]float64, store.Len()),
		feedOrder:  make([]int, store.Len()),
	}
	for i, p := range store.Places() {
		e.popularity[i] = PopularityScore(p.Rating, p.Reviews)
		e.feedOrder[i] = p.ID
	}
	sort.Slice(e.feedOrder, func(i, j int) bool {
		a, b := e.feedOrder[i], e.feedOrder[j]
		if e.popularity[a-1] != e.popularity[b-1] {
			return e.popularity[a-1] > e.popularity[b-1]
		}
		return a < b
	})
	logger.Debug("Ranking engine built", slog.Int("places", store.Len()))
	return e
}

// PopularityScore combines rating and review volume: rating weighted
// linearly, review count log-dampened so a flood of reviews cannot drown a
// poor rating. Monotonic in both inputs.
func PopularityScore(rating, reviews float64) float64 {
	return rating * math.Log1p(reviews)
}

// Popularity returns the precomputed score for a place id.
func (e *Engine) Popularity(id int) float64 {
	if id < 1 || id > len(e.popularity) {
		return 0
	}
	return e.popularity[id-1]
}

// RankFeed returns one page of the catalog ordered by popularity descending,
// place id ascending. The order is a stable total order: concatenating all
// pages reproduces the catalog exactly once.
func (e *Engine) RankFeed(page, pageSize int) ([]types.Place, bool, error) {
	return e.paginate(e.feedOrder, page, pageSize)
}

// RankSearch matches places whose name, city or state contains the
// case-insensitive query, unioned with places whose content vectors clear
// the similarity floor. Candidates are ordered by blended relevance
// descending, then popularity descending, then id ascending.
func (e *Engine) RankSearch(query string, page, pageSize int) ([]types.Place, bool, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, false, types.ErrEmptyQuery
	}
	if page < 1 || pageSize < 1 {
		return nil, false, types.ErrInvalidPage
	}

	relevance := make(map[int]float64)
	for _, p := range e.store.Places() {
		name, city, state := strings.ToLower(p.Name), strings.ToLower(p.City), strings.ToLower(p.State)
		var score float64
		if name == q {
			score += exactNameWeight
		}
		if city == q {
			score += exactCityWeight
		}
		if state == q {
			score += exactStateWeight
		}
		if strings.Contains(name, q) {
			score += partialNameWeight
		}
		if strings.Contains(city, q) {
			score += partialCityWeight
		}
		if strings.Contains(state, q) {
			score += partialStateWeight
		}
		if score > 0 {
			relevance[p.ID] = score
		}
	}

	// Fuzzy candidates: vector similarity against the query text.
	qvec := e.space.Embed(query)
	for _, sim := range e.index.Neighbors(qvec, 0, e.store.Len()) {
		if sim.Score < e.cfg.SimilarityFloor {
			continue
		}
		relevance[sim.PlaceID] += e.cfg.SimilarityWeight * sim.Score
	}

	ids := make([]int, 0, len(relevance))
	for id := range relevance {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if relevance[a] != relevance[b] {
			return relevance[a] > relevance[b]
		}
		if e.popularity[a-1] != e.popularity[b-1] {
			return e.popularity[a-1] > e.popularity[b-1]
		}
		return a < b
	})
	return e.paginate(ids, page, pageSize)
}

// paginate slices one 1-indexed page out of a ranked id list. Pages past the
// end clamp to an empty page rather than erroring.
func (e *Engine) paginate(ids []int, page, pageSize int) ([]types.Place, bool, error) {
	if page < 1 || pageSize < 1 {
		return nil, false, types.ErrInvalidPage
	}
	offset := (page - 1) * pageSize
	if offset >= len(ids) {
		return []types.Place{}, false, nil
	}
	end := offset + pageSize
	if end > len(ids) {
		end = len(ids)
	}
	places := make([]types.Place, 0, end-offset)
	for _, id := range ids[offset:end] {
		p, ok := e.store.GetByID(id)
		if !ok {
			continue
		}
		places = append(places, p)
	}
	return places, end < len(ids), nil
}

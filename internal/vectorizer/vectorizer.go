// Package vectorizer builds the term-weighted vector space over the catalog's
// descriptive text. The space is built exactly once at startup; vectors are
// never recomputed per request.
package vectorizer

import (
	"errors"
	"log/slog"
	"math"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-places-recommender/internal/types"
)

// Vector is a sparse L2-normalized term-weight vector, keyed by vocabulary
// index. Sparse because each place's text touches a tiny slice of the
// vocabulary.
type Vector map[int]float64

// Dot returns the inner product of two vectors. Since both sides are
// L2-normalized this is their cosine similarity.
func (v Vector) Dot(other Vector) float64 {
	// Iterate the smaller side.
	if len(other) < len(v) {
		v, other = other, v
	}
	var sum float64
	for idx, w := range v {
		if ow, ok := other[idx]; ok {
			sum += w * ow
		}
	}
	return sum
}

// VectorSpace holds the shared vocabulary, IDF weights and one vector per
// place. Immutable after Build; safe for concurrent reads.
type VectorSpace struct {
	vocabulary map[string]int
	idf        []float64
	vectors    []Vector // indexed by place id - 1
}

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Build constructs the vocabulary and per-place vectors from the combined
// descriptive text of every place. Per-place vectors are computed in
// parallel; the result is deterministic because the vocabulary ordering is.
func Build(places []types.Place, logger *slog.Logger) (*VectorSpace, error) {
	if len(places) == 0 {
		return nil, errors.New("vectorizer: empty catalog")
	}

	// Document frequency over unique tokens per place.
	df := make(map[string]int)
	for _, p := range places {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(combinedText(p)) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return nil, errors.New("vectorizer: no tokens in catalog text")
	}

	vs := &VectorSpace{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		vectors:    make([]Vector, len(places)),
	}
	n := float64(len(places))
	for i, term := range terms {
		vs.vocabulary[term] = i
		// Smoothed IDF: total over the vocabulary, finite even for terms
		// appearing in zero or one document.
		vs.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range places {
		i, p := i, p
		g.Go(func() error {
			vs.vectors[i] = vs.Embed(combinedText(p))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Vector space built",
		slog.Int("vocabulary_size", len(terms)),
		slog.Int("vectors", len(places)))
	return vs, nil
}

// VectorFor returns the prebuilt vector for a place id in O(1).
func (vs *VectorSpace) VectorFor(id int) (Vector, bool) {
	if id < 1 || id > len(vs.vectors) {
		return nil, false
	}
	return vs.vectors[id-1], true
}

// VocabularySize reports the fixed dimensionality of the space.
func (vs *VectorSpace) VocabularySize() int {
	return len(vs.idf)
}

// Embed computes the TF-IDF vector for arbitrary text against the fixed
// vocabulary. Out-of-vocabulary tokens are dropped; the result is
// L2-normalized, or empty when nothing matched.
func (vs *VectorSpace) Embed(text string) Vector {
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text) {
		if idx, ok := vs.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	vec := make(Vector, len(tf))
	if total == 0 {
		return vec
	}
	var norm float64
	for idx, count := range tf {
		w := float64(count) / float64(total) * vs.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// combinedText concatenates the descriptive fields that feed the vector
// space, mirroring what the search surface covers.
func combinedText(p types.Place) string {
	return strings.Join([]string{p.Name, p.City, p.State, p.Category, p.Description, p.BestTime}, " ")
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again",
		"further", "than", "so", "such", "into", "about", "between",
		"through", "during", "before", "after", "above", "below", "out",
		"off", "own", "same", "too", "very", "can", "will", "just",
		"should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

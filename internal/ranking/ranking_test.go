package ranking

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-places-recommender/internal/catalog"
	"github.com/FACorreiaa/go-places-recommender/internal/similarity"
	"github.com/FACorreiaa/go-places-recommender/internal/types"
	"github.com/FACorreiaa/go-places-recommender/internal/vectorizer"
)

const testCatalog = `name,city,state,description,category,rating,reviews,best_time,image_url
Taj Mahal,Agra,Uttar Pradesh,marble mausoleum yamuna,Monument,4.6,1.7,October to March,
Agra Fort,Agra,Uttar Pradesh,sandstone fort yamuna,Fort,4.5,1.2,October to March,
Baga Beach,Baga,Goa,sand surf shacks,Beach,4.2,0.6,November to February,
Palolem Beach,Canacona,Goa,sand palm huts,Beach,4.5,0.3,November to February,
Golden Temple,Amritsar,Punjab,sikh gurdwara sacred pool,Temple,4.9,1.5,October to March,
`

func buildEngine(t *testing.T) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := catalog.Load(strings.NewReader(testCatalog), logger)
	require.NoError(t, err)
	space, err := vectorizer.Build(store.Places(), logger)
	require.NoError(t, err)
	index := similarity.NewIndex(space, store.Len())
	return New(store, space, index, DefaultConfig(), logger)
}

func TestPopularityScore_Monotonic(t *testing.T) {
	assert.Greater(t, PopularityScore(4.6, 1.7), PopularityScore(4.6, 1.2))
	assert.Greater(t, PopularityScore(4.6, 1.7), PopularityScore(4.2, 1.7))
	assert.Zero(t, PopularityScore(0, 100))
	assert.Zero(t, PopularityScore(5, 0))
}

func TestRankFeed_StableTotalOrdering(t *testing.T) {
	e := buildEngine(t)

	var all []int
	page := 1
	for {
		placesPage, hasMore, err := e.RankFeed(page, 2)
		require.NoError(t, err)
		for _, p := range placesPage {
			all = append(all, p.ID)
		}
		if !hasMore {
			break
		}
		page++
	}

	// Concatenating all pages reproduces the whole catalog, no gaps, no dups.
	require.Len(t, all, 5)
	seen := make(map[int]bool)
	for _, id := range all {
		assert.False(t, seen[id], "place %d returned twice", id)
		seen[id] = true
	}

	// Popularity descending across page boundaries.
	for i := 1; i < len(all); i++ {
		prev, cur := e.Popularity(all[i-1]), e.Popularity(all[i])
		if prev == cur {
			assert.Less(t, all[i-1], all[i])
		} else {
			assert.Greater(t, prev, cur)
		}
	}

	// Repeated calls return the same pages.
	again, _, err := e.RankFeed(1, 2)
	require.NoError(t, err)
	assert.Equal(t, all[:2], []int{again[0].ID, again[1].ID})
}

func TestRankFeed_InvalidPage(t *testing.T) {
	e := buildEngine(t)

	_, _, err := e.RankFeed(0, 10)
	assert.ErrorIs(t, err, types.ErrInvalidPage)
	_, _, err = e.RankFeed(1, 0)
	assert.ErrorIs(t, err, types.ErrInvalidPage)
	_, _, err = e.RankFeed(-1, -1)
	assert.ErrorIs(t, err, types.ErrInvalidPage)
}

func TestRankFeed_ClampsPastLastPage(t *testing.T) {
	e := buildEngine(t)

	placesPage, hasMore, err := e.RankFeed(99, 10)
	require.NoError(t, err)
	assert.Empty(t, placesPage)
	assert.False(t, hasMore)
}

func TestRankFeed_HasMore(t *testing.T) {
	e := buildEngine(t)

	_, hasMore, err := e.RankFeed(1, 4)
	require.NoError(t, err)
	assert.True(t, hasMore, "one more place exists beyond page 1")

	_, hasMore, err = e.RankFeed(2, 4)
	require.NoError(t, err)
	assert.False(t, hasMore)
}

func TestRankSearch_EmptyQuery(t *testing.T) {
	e := buildEngine(t)

	_, _, err := e.RankSearch("", 1, 10)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
	_, _, err = e.RankSearch("   ", 1, 10)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestRankSearch_NoMatchesIsNotAnError(t *testing.T) {
	e := buildEngine(t)

	placesPage, hasMore, err := e.RankSearch("zzzznotaplace", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, placesPage)
	assert.False(t, hasMore)
}

func TestRankSearch_ExactNameRanksFirst(t *testing.T) {
	e := buildEngine(t)

	placesPage, _, err := e.RankSearch("Taj Mahal", 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, placesPage)
	assert.Equal(t, "Taj Mahal", placesPage[0].Name)
}

func TestRankSearch_SubstringUnion(t *testing.T) {
	e := buildEngine(t)

	placesPage, _, err := e.RankSearch("beach", 1, 10)
	require.NoError(t, err)
	names := make([]string, 0, len(placesPage))
	for _, p := range placesPage {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "Baga Beach")
	assert.Contains(t, names, "Palolem Beach")

	// No duplicates even though both text and vector matching fire.
	seen := make(map[int]bool)
	for _, p := range placesPage {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestRankSearch_FuzzyMatchThroughVectors(t *testing.T) {
	e := buildEngine(t)

	// "yamuna" appears only in descriptions, never in name/city/state.
	placesPage, _, err := e.RankSearch("yamuna", 1, 10)
	require.NoError(t, err)
	names := make([]string, 0, len(placesPage))
	for _, p := range placesPage {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "Taj Mahal")
	assert.Contains(t, names, "Agra Fort")
}

func TestRankSearch_Pagination(t *testing.T) {
	e := buildEngine(t)

	first, hasMore, err := e.RankSearch("beach", 1, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, hasMore)

	second, _, err := e.RankSearch("beach", 2, 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	_, _, err = e.RankSearch("beach", 0, 1)
	assert.ErrorIs(t, err, types.ErrInvalidPage)
}

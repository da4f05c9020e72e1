package places

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-places-recommender/internal/catalog"
	"github.com/FACorreiaa/go-places-recommender/internal/ranking"
	"github.com/FACorreiaa/go-places-recommender/internal/similarity"
	"github.com/FACorreiaa/go-places-recommender/internal/types"
	"github.com/FACorreiaa/go-places-recommender/internal/vectorizer"
)

const testCatalog = `name,city,state,description,category,rating,reviews,best_time,image_url
Taj Mahal,Agra,Uttar Pradesh,marble mausoleum yamuna,Monument,4.6,1.7,October to March,http://img/taj.jpg
Agra Fort,Agra,Uttar Pradesh,sandstone fort yamuna,Fort,4.5,1.2,October to March,
Baga Beach,Baga,Goa,sand surf shacks,Beach,4.2,0.6,November to February,
Palolem Beach,Canacona,Goa,sand palm huts,Beach,4.5,0.3,November to February,
Golden Temple,Amritsar,Punjab,sikh gurdwara sacred pool,Temple,4.9,1.5,October to March,
Mysore Palace,Mysuru,Karnataka,royal palace lamps,Palace,4.6,1.0,October to March,
`

func newTestService(t *testing.T) *ServiceImpl {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := catalog.Load(strings.NewReader(testCatalog), logger)
	require.NoError(t, err)
	space, err := vectorizer.Build(store.Places(), logger)
	require.NoError(t, err)
	index := similarity.NewIndex(space, store.Len())
	engine := ranking.New(store, space, index, ranking.DefaultConfig(), logger)
	return NewServiceImpl(store, space, index, engine, DefaultOptions(), logger)
}

func TestFeed_FirstPage(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Feed(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Page)
	require.Len(t, resp.Places, 3)
	assert.True(t, resp.HasMore)

	// Popularity descending; the Taj's review volume puts it on top.
	assert.Equal(t, "Taj Mahal", resp.Places[0].Name)
	for i := 1; i < len(resp.Places); i++ {
		assert.GreaterOrEqual(t, resp.Places[i-1].PopularityScore, resp.Places[i].PopularityScore)
	}
}

func TestFeed_DefaultLimitWhenZero(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Feed(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Places, 6, "catalog smaller than the default page size")
	assert.False(t, resp.HasMore)
}

func TestFeed_InvalidPage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Feed(context.Background(), 0, 10)
	assert.ErrorIs(t, err, types.ErrInvalidPage)
	_, err = svc.Feed(context.Background(), -3, 10)
	assert.ErrorIs(t, err, types.ErrInvalidPage)
}

func TestSearch_ReturnsRecords(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Search(context.Background(), "beach", 0)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "beach", resp.Query)
	assert.Equal(t, len(resp.Places), resp.TotalResults)
	require.NotEmpty(t, resp.Places)
	assert.Contains(t, resp.Places[0].Location, ",", "location is city+state composed")
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Search(context.Background(), "", 0)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestSearch_NoMatches(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Search(context.Background(), "zzzznotaplace", 0)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Places)
	assert.Zero(t, resp.TotalResults)
}

func TestSearch_CachedResponse(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Search(context.Background(), "agra", 0)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "agra", 0)
	require.NoError(t, err)
	assert.Same(t, first, second, "repeated query is served from the cache")
}

func TestAutocomplete_ShortPrefix(t *testing.T) {
	svc := newTestService(t)

	for _, q := range []string{"", "a", " a "} {
		_, err := svc.Autocomplete(context.Background(), q)
		assert.ErrorIs(t, err, types.ErrQueryTooShort, "query %q", q)
	}
}

func TestAutocomplete_MatchesAndRanking(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Autocomplete(context.Background(), "Taj")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Suggestions)

	found := false
	for _, sg := range resp.Suggestions {
		if strings.Contains(sg.Text, "Taj") {
			found = true
			assert.Equal(t, types.SuggestionName, sg.Type)
			assert.Equal(t, "Agra, Uttar Pradesh", sg.Location)
		}
	}
	assert.True(t, found, "a suggestion containing Taj must be present")

	// Rating descending, then text ascending.
	for i := 1; i < len(resp.Suggestions); i++ {
		prev, cur := resp.Suggestions[i-1], resp.Suggestions[i]
		if prev.Rating == cur.Rating {
			assert.Less(t, prev.Text, cur.Text)
		} else {
			assert.Greater(t, prev.Rating, cur.Rating)
		}
	}
}

func TestAutocomplete_DedupedByText(t *testing.T) {
	svc := newTestService(t)

	// Both Agra places share the city; "agra" also hits the Agra Fort name.
	resp, err := svc.Autocomplete(context.Background(), "agra")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, sg := range resp.Suggestions {
		key := strings.ToLower(sg.Text)
		assert.False(t, seen[key], "duplicate suggestion %q", sg.Text)
		seen[key] = true
	}
	assert.True(t, seen["agra"], "city suggestion present")
	assert.True(t, seen["agra fort"], "name suggestion present")
}

func TestAutocomplete_Capped(t *testing.T) {
	svc := newTestService(t)

	// "a" is too short, but "ar"-class substrings hit many fields; assert the
	// cap holds for a broad two-letter query.
	resp, err := svc.Autocomplete(context.Background(), "ra")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(resp.Suggestions), DefaultOptions().AutocompleteCap)
}

func TestPlaceDetail_CaseInsensitiveExactMatch(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.PlaceDetail(context.Background(), "taj mahal")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Taj Mahal", resp.Place.Name)
	assert.Equal(t, "Agra, Uttar Pradesh", resp.Place.Location)

	assert.LessOrEqual(t, len(resp.SimilarPlaces), DefaultOptions().SimilarPlacesK)
	require.NotEmpty(t, resp.SimilarPlaces)
	for _, sp := range resp.SimilarPlaces {
		assert.NotEqual(t, "Taj Mahal", sp.Name, "a place is never similar to itself")
	}
	assert.Equal(t, "Agra Fort", resp.SimilarPlaces[0].Name, "shared city and river terms dominate")
}

func TestPlaceDetail_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.PlaceDetail(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, types.ErrPlaceNotFound)
}

func TestStatus_ReportsSnapshot(t *testing.T) {
	svc := newTestService(t)

	resp := svc.Status(context.Background())
	assert.True(t, resp.Success)
	assert.Equal(t, 6, resp.Places)
	assert.Greater(t, resp.VocabularySize, 0)

	_, err := uuid.Parse(resp.SnapshotID)
	assert.NoError(t, err)
}

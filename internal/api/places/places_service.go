package places

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-places-recommender/app/observability/metrics"
	"github.com/FACorreiaa/go-places-recommender/internal/catalog"
	"github.com/FACorreiaa/go-places-recommender/internal/ranking"
	"github.com/FACorreiaa/go-places-recommender/internal/similarity"
	"github.com/FACorreiaa/go-places-recommender/internal/types"
	"github.com/FACorreiaa/go-places-recommender/internal/vectorizer"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the query dispatcher contract: the four query shapes the
// presentation layer calls, plus snapshot status.
type Service interface {
	Feed(ctx context.Context, page, limit int) (*types.FeedResponse, error)
	Search(ctx context.Context, query string, limit int) (*types.SearchResponse, error)
	Autocomplete(ctx context.Context, query string) (*types.AutocompleteResponse, error)
	PlaceDetail(ctx context.Context, name string) (*types.PlaceDetailResponse, error)
	Status(ctx context.Context) *types.StatusResponse
}

// Options carries the dispatcher policy knobs exposed through app config.
type Options struct {
	DefaultFeedSize int           // feed page size when the caller sends none
	MaxPageSize     int           // upper bound on caller-supplied limits
	SearchLimit     int           // search is a single page of this size by default
	SimilarPlacesK  int           // neighbors returned by place detail
	AutocompleteCap int           // max suggestions per query
	MinPrefixLen    int           // shorter prefixes fail with ErrQueryTooShort
	CacheTTL        time.Duration // search/autocomplete response cache TTL
}

// DefaultOptions mirrors the embedded config.yml values.
func DefaultOptions() Options {
	return Options{
		DefaultFeedSize: 20,
		MaxPageSize:     100,
		SearchLimit:     20,
		SimilarPlacesK:  5,
		AutocompleteCap: 8,
		MinPrefixLen:    2,
		CacheTTL:        5 * time.Minute,
	}
}

// ServiceImpl dispatches queries against the immutable engine state built at
// startup. All operations are pure reads; the response cache is the only
// internal mutability and go-cache handles its own locking.
type ServiceImpl struct {
	logger     *slog.Logger
	store      *catalog.Store
	space      *vectorizer.VectorSpace
	index      *similarity.Index
	engine     *ranking.Engine
	opts       Options
	respCache  *cache.Cache
	snapshotID uuid.UUID
}

// NewServiceImpl wires the dispatcher and mints the catalog snapshot ID for
// this process lifetime.
func NewServiceImpl(store *catalog.Store, space *vectorizer.VectorSpace, index *similarity.Index, engine *ranking.Engine, opts Options, logger *slog.Logger) *ServiceImpl {
	s := &ServiceImpl{
		logger:     logger,
		store:      store,
		space:      space,
		index:      index,
		engine:     engine,
		opts:       opts,
		respCache:  cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		snapshotID: uuid.New(),
	}
	logger.Info("Places service ready",
		slog.String("snapshot_id", s.snapshotID.String()),
		slog.Int("places", store.Len()))
	return s
}

// Feed returns one popularity-ranked page of the catalog.
func (s *ServiceImpl) Feed(ctx context.Context, page, limit int) (*types.FeedResponse, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Feed", trace.WithAttributes(
		attribute.Int("page", page),
		attribute.Int("limit", limit),
	))
	defer span.End()
	defer metrics.Observe(ctx, "feed", time.Now())

	if limit == 0 {
		limit = s.opts.DefaultFeedSize
	}
	if limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}

	placesPage, hasMore, err := s.engine.RankFeed(page, limit)
	if err != nil {
		s.logger.WarnContext(ctx, "Feed ranking rejected request", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("results", len(placesPage)))
	span.SetStatus(codes.Ok, "Feed page served")
	return &types.FeedResponse{
		Success: true,
		Places:  s.records(placesPage),
		Page:    page,
		HasMore: hasMore,
	}, nil
}

// Search runs a single-page keyword search. Results for a repeated query are
// served from the response cache until it expires.
func (s *ServiceImpl) Search(ctx context.Context, query string, limit int) (*types.SearchResponse, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()
	defer metrics.Observe(ctx, "search", time.Now())

	if limit <= 0 {
		limit = s.opts.SearchLimit
	}
	if limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}

	key := fmt.Sprintf("search:%s:%d", strings.ToLower(strings.TrimSpace(query)), limit)
	if cached, ok := s.respCache.Get(key); ok {
		metrics.CacheHit(ctx, "search")
		span.SetStatus(codes.Ok, "Search served from cache")
		return cached.(*types.SearchResponse), nil
	}

	placesPage, _, err := s.engine.RankSearch(query, 1, limit)
	if err != nil {
		s.logger.WarnContext(ctx, "Search rejected", slog.String("query", query), slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	resp := &types.SearchResponse{
		Success:      true,
		Places:       s.records(placesPage),
		Query:        query,
		TotalResults: len(placesPage),
	}
	s.respCache.SetDefault(key, resp)
	span.SetAttributes(attribute.Int("results", len(placesPage)))
	span.SetStatus(codes.Ok, "Search served")
	return resp, nil
}

// Autocomplete returns up to AutocompleteCap suggestions matching the query
// as a case-insensitive prefix or substring of name, city or state, deduped
// by text and ranked by rating descending then text ascending.
func (s *ServiceImpl) Autocomplete(ctx context.Context, query string) (*types.AutocompleteResponse, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Autocomplete", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()
	defer metrics.Observe(ctx, "autocomplete", time.Now())

	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < s.opts.MinPrefixLen {
		span.RecordError(types.ErrQueryTooShort)
		return nil, types.ErrQueryTooShort
	}

	key := "autocomplete:" + q
	if cached, ok := s.respCache.Get(key); ok {
		metrics.CacheHit(ctx, "autocomplete")
		span.SetStatus(codes.Ok, "Autocomplete served from cache")
		return cached.(*types.AutocompleteResponse), nil
	}

	best := make(map[string]types.Suggestion) // normalized text -> best-rated suggestion
	consider := func(text, location string, rating float64, kind types.SuggestionType) {
		norm := strings.ToLower(text)
		if !strings.Contains(norm, q) {
			return
		}
		if cur, ok := best[norm]; ok && cur.Rating >= rating {
			return
		}
		best[norm] = types.Suggestion{Text: text, Location: location, Rating: rating, Type: kind}
	}
	for _, p := range s.store.Places() {
		consider(p.Name, p.Location(), p.Rating, types.SuggestionName)
		consider(p.City, p.State, p.Rating, types.SuggestionCity)
		consider(p.State, "State", p.Rating, types.SuggestionState)
	}

	suggestions := make([]types.Suggestion, 0, len(best))
	for _, sg := range best {
		suggestions = append(suggestions, sg)
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Rating != suggestions[j].Rating {
			return suggestions[i].Rating > suggestions[j].Rating
		}
		return suggestions[i].Text < suggestions[j].Text
	})
	if len(suggestions) > s.opts.AutocompleteCap {
		suggestions = suggestions[:s.opts.AutocompleteCap]
	}

	resp := &types.AutocompleteResponse{Success: true, Suggestions: suggestions, Query: query}
	s.respCache.SetDefault(key, resp)
	span.SetAttributes(attribute.Int("suggestions", len(suggestions)))
	span.SetStatus(codes.Ok, "Autocomplete served")
	return resp, nil
}

// PlaceDetail resolves a place by case-insensitive exact name and attaches
// its top-k content-similar neighbors, never including the place itself.
func (s *ServiceImpl) PlaceDetail(ctx context.Context, name string) (*types.PlaceDetailResponse, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "PlaceDetail", trace.WithAttributes(
		attribute.String("place.name", name),
	))
	defer span.End()
	defer metrics.Observe(ctx, "place_detail", time.Now())

	p, ok := s.store.GetByName(name)
	if !ok {
		s.logger.DebugContext(ctx, "Place not found", slog.String("name", name))
		span.RecordError(types.ErrPlaceNotFound)
		return nil, fmt.Errorf("%w: %s", types.ErrPlaceNotFound, name)
	}

	similarIDs := s.index.SimilarTo(p.ID, s.opts.SimilarPlacesK)
	similar := make([]types.PlaceRecord, 0, len(similarIDs))
	for _, sim := range similarIDs {
		sp, ok := s.store.GetByID(sim.PlaceID)
		if !ok {
			continue
		}
		similar = append(similar, s.record(sp))
	}

	span.SetAttributes(attribute.Int("similar_places", len(similar)))
	span.SetStatus(codes.Ok, "Place detail served")
	return &types.PlaceDetailResponse{
		Success:       true,
		Place:         s.record(p),
		SimilarPlaces: similar,
	}, nil
}

// Status reports the snapshot this process is serving.
func (s *ServiceImpl) Status(ctx context.Context) *types.StatusResponse {
	_, span := otel.Tracer("PlacesService").Start(ctx, "Status")
	defer span.End()
	return &types.StatusResponse{
		Success:        true,
		SnapshotID:     s.snapshotID.String(),
		Places:         s.store.Len(),
		VocabularySize: s.space.VocabularySize(),
	}
}

func (s *ServiceImpl) record(p types.Place) types.PlaceRecord {
	return types.PlaceRecord{
		ID:              p.ID,
		Name:            p.Name,
		Location:        p.Location(),
		Rating:          p.Rating,
		Reviews:         p.Reviews,
		BestTime:        p.BestTime,
		ImageURL:        p.ImageURL,
		PopularityScore: s.engine.Popularity(p.ID),
	}
}

func (s *ServiceImpl) records(placesPage []types.Place) []types.PlaceRecord {
	records := make([]types.PlaceRecord, 0, len(placesPage))
	for _, p := range placesPage {
		records = append(records, s.record(p))
	}
	return records
}

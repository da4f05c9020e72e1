package places

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-places-recommender/internal/api"
	"github.com/FACorreiaa/go-places-recommender/internal/types"
)

// Handler translates HTTP requests into dispatcher calls. It owns no engine
// state; everything interesting happens in the Service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Feed serves one popularity-ranked page of places.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Feed", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/feed"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Feed"))

	page, err := queryInt(r, "page", 1)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "page must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be an integer")
		return
	}

	resp, err := h.service.Feed(ctx, page, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to serve feed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Search serves keyword search results for the query parameter.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Search", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Search"))

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be an integer")
		return
	}

	resp, err := h.service.Search(ctx, r.URL.Query().Get("query"), limit)
	if err != nil {
		l.WarnContext(ctx, "Search request rejected", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Autocomplete serves lightweight suggestions for a prefix.
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Autocomplete", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/autocomplete"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Autocomplete"))

	resp, err := h.service.Autocomplete(ctx, r.URL.Query().Get("query"))
	if err != nil {
		l.DebugContext(ctx, "Autocomplete request rejected", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// PlaceDetail serves a place looked up by name plus its similar places.
func (h *Handler) PlaceDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "PlaceDetail", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/{name}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "PlaceDetail"))

	name := chi.URLParam(r, "name")
	if name == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "place name is required")
		return
	}

	resp, err := h.service.PlaceDetail(ctx, name)
	if err != nil {
		status := api.StatusFromError(err)
		if status == http.StatusNotFound {
			l.DebugContext(ctx, "Place not found", slog.String("name", name))
		} else {
			l.ErrorContext(ctx, "Failed to serve place detail", slog.Any("error", err))
		}
		api.ErrorResponse(w, r, status, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Status reports the catalog snapshot this process serves.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Status")
	defer span.End()

	api.WriteJSONResponse(w, r, http.StatusOK, h.service.Status(ctx))
}

// queryInt parses an optional integer query parameter. Range validation
// belongs to the engine; this only rejects non-numeric input.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.ErrInvalidPage
	}
	return v, nil
}

// Package catalog loads the place dataset into memory and is the canonical
// read-only source of truth for every other engine component.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-places-recommender/internal/types"
)

// Columns the loader understands. name, city, state, rating and reviews are
// critical: a row missing any of them aborts the whole load. The rest fall
// back to documented defaults so one sparse row does not sink the catalog.
const (
	colName        = "name"
	colCity        = "city"
	colState       = "state"
	colDescription = "description"
	colCategory    = "category"
	colRating      = "rating"
	colReviews     = "reviews"
	colBestTime    = "best_time"
	colImageURL    = "image_url"
)

const defaultCategory = "Other"

// Store holds the immutable catalog with O(1) id and name lookups.
// Safe for unbounded concurrent reads after Load returns.
type Store struct {
	places []types.Place
	byName map[string]int // normalized name -> index
}

// Load parses tabular place data. IDs are assigned in file order starting
// at 1. It fails fast with *types.DataLoadError on a missing critical column,
// an unparseable rating/reviews value, or a duplicate normalized name.
func Load(r io.Reader, logger *slog.Logger) (*Store, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &types.DataLoadError{Row: 1, Reason: fmt.Sprintf("reading header: %v", err)}
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colName, colCity, colState, colRating, colReviews} {
		if _, ok := cols[required]; !ok {
			return nil, &types.DataLoadError{Row: 1, Field: required, Reason: "missing column"}
		}
	}

	s := &Store{byName: make(map[string]int)}
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, &types.DataLoadError{Row: row, Reason: err.Error()}
		}

		field := func(col string) string {
			idx, ok := cols[col]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		p := types.Place{
			ID:          len(s.places) + 1,
			Name:        field(colName),
			City:        field(colCity),
			State:       field(colState),
			Description: field(colDescription),
			Category:    field(colCategory),
			BestTime:    field(colBestTime),
			ImageURL:    field(colImageURL),
		}
		for _, req := range []struct{ col, val string }{
			{colName, p.Name}, {colCity, p.City}, {colState, p.State},
		} {
			if req.val == "" {
				return nil, &types.DataLoadError{Row: row, Field: req.col, Reason: "required field is empty"}
			}
		}
		if p.Category == "" {
			p.Category = defaultCategory
		}

		p.Rating, err = parseFloat(field(colRating))
		if err != nil {
			return nil, &types.DataLoadError{Row: row, Field: colRating, Reason: err.Error()}
		}
		if p.Rating < 0 || p.Rating > 5 {
			return nil, &types.DataLoadError{Row: row, Field: colRating, Reason: fmt.Sprintf("rating %v outside [0,5]", p.Rating)}
		}
		p.Reviews, err = parseFloat(field(colReviews))
		if err != nil {
			return nil, &types.DataLoadError{Row: row, Field: colReviews, Reason: err.Error()}
		}
		if p.Reviews < 0 {
			return nil, &types.DataLoadError{Row: row, Field: colReviews, Reason: "review count must not be negative"}
		}

		key := normalizeName(p.Name)
		if _, exists := s.byName[key]; exists {
			return nil, &types.DataLoadError{Row: row, Field: colName, Reason: fmt.Sprintf("duplicate name %q", p.Name)}
		}
		s.byName[key] = len(s.places)
		s.places = append(s.places, p)
	}

	if len(s.places) == 0 {
		return nil, &types.DataLoadError{Row: row, Reason: "catalog contains no places"}
	}
	logger.Info("Catalog loaded", slog.Int("places", len(s.places)))
	return s, nil
}

// LoadFile opens path and delegates to Load.
func LoadFile(path string, logger *slog.Logger) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, logger)
}

// Places returns the catalog in id order. Callers must not mutate it.
func (s *Store) Places() []types.Place {
	return s.places
}

// Len reports the number of places in the catalog.
func (s *Store) Len() int {
	return len(s.places)
}

// GetByID returns the place with the given id.
func (s *Store) GetByID(id int) (types.Place, bool) {
	if id < 1 || id > len(s.places) {
		return types.Place{}, false
	}
	return s.places[id-1], true
}

// GetByName looks a place up by case-insensitive exact name.
func (s *Store) GetByName(name string) (types.Place, bool) {
	idx, ok := s.byName[normalizeName(name)]
	if !ok {
		return types.Place{}, false
	}
	return s.places[idx], true
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func parseFloat(v string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("required numeric field is empty")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", v)
	}
	return f, nil
}

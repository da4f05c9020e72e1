package types

// Place is one catalog destination, parsed and validated at load time.
// The catalog is immutable for the process lifetime, so Place values are
// shared freely between goroutines.
type Place struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Description string  `json:"description"`
	Category    string  `json:"category"` // defaults to "Other" when the column is empty
	Rating      float64 `json:"rating"`   // Google review rating in [0,5]
	Reviews     float64 `json:"reviews"`  // review count in lakhs; ranking uses the raw magnitude
	BestTime    string  `json:"best_time"`
	ImageURL    string  `json:"image_url"`
}

// Location composes the display location the frontend renders under each card.
func (p Place) Location() string {
	return p.City + ", " + p.State
}

// PlaceRecord is the response shape for a single place.
type PlaceRecord struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Location        string  `json:"location"`
	Rating          float64 `json:"rating"`
	Reviews         float64 `json:"reviews"`
	BestTime        string  `json:"best_time"`
	ImageURL        string  `json:"image_url"`
	PopularityScore float64 `json:"popularity_score"`
}

// SimilarityResult pairs a place with its content-similarity score in [0,1].
type SimilarityResult struct {
	PlaceID int     `json:"place_id"`
	Score   float64 `json:"score"`
}

// SuggestionType tells the frontend which field an autocomplete entry matched.
type SuggestionType string

const (
	SuggestionName  SuggestionType = "name"
	SuggestionCity  SuggestionType = "city"
	SuggestionState SuggestionType = "state"
)

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Text     string         `json:"text"`
	Location string         `json:"location"`
	Rating   float64        `json:"rating"`
	Type     SuggestionType `json:"type"`
}

// FeedResponse is the paginated feed envelope.
type FeedResponse struct {
	Success bool          `json:"success"`
	Places  []PlaceRecord `json:"places"`
	Page    int           `json:"page"`
	HasMore bool          `json:"has_more"`
}

// SearchResponse echoes the query alongside its results.
type SearchResponse struct {
	Success      bool          `json:"success"`
	Places       []PlaceRecord `json:"places"`
	Query        string        `json:"query"`
	TotalResults int           `json:"total_results"`
}

// AutocompleteResponse carries ranked suggestions for a prefix.
type AutocompleteResponse struct {
	Success     bool         `json:"success"`
	Suggestions []Suggestion `json:"suggestions"`
	Query       string       `json:"query"`
}

// PlaceDetailResponse is a place plus its content-similar neighbors.
type PlaceDetailResponse struct {
	Success       bool          `json:"success"`
	Place         PlaceRecord   `json:"place"`
	SimilarPlaces []PlaceRecord `json:"similar_places"`
}

// StatusResponse reports which catalog snapshot the process is serving.
type StatusResponse struct {
	Success        bool   `json:"success"`
	SnapshotID     string `json:"snapshot_id"`
	Places         int    `json:"places"`
	VocabularySize int    `json:"vocabulary_size"`
}

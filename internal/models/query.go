package models

import (
	"errors"
	"strings"
)

// Validation errors for recommendation requests.
var (
	ErrEmptyQuery  = errors.New("query cannot be empty")
	ErrInvalidTopK = errors.New("top_k must be a positive integer")
)

// RecommendRequest is a recommendation query: free-form job description
// text plus the number of results wanted.
type RecommendRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// Validate checks the request and normalizes TopK. An unset TopK gets
// defaultTopK; values above maxTopK are clamped to maxTopK (the documented
// ceiling). Zero or negative TopK set explicitly by the caller is rejected,
// as is an empty query.
func (r *RecommendRequest) Validate(defaultTopK, maxTopK int) error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if r.TopK == 0 {
		r.TopK = defaultTopK
	}
	if r.TopK <= 0 {
		return ErrInvalidTopK
	}
	if r.TopK > maxTopK {
		r.TopK = maxTopK
	}
	return nil
}

// Package models defines core data structures for assessments, queries, and recommendations.
package models

import "strings"

// Assessment is one recommendable catalog item. Items are immutable once
// loaded from the catalog collaborator; the engine only reads and indexes them.
type Assessment struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url,omitempty"`
}

// IndexText returns the text that is embedded for the assessment:
// the name, description, and type tag joined with spaces.
func (a *Assessment) IndexText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Name, a.Description, a.Type} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

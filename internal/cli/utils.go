// Package cli provides CLI utilities for SkillSift.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/skillsift/skillsift/internal/models"
	"github.com/skillsift/skillsift/pkg/utils"
)

// OutputFormat is the format for recommendation output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteRecommendations writes recommendations to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteRecommendations(w io.Writer, response *models.RecommendResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeRecommendationsText(w, response)
		return nil
	}
}

func writeRecommendationsText(w io.Writer, response *models.RecommendResponse) {
	fmt.Fprintf(w, "\nFound %d recommendations for %q\n\n", response.Count, response.Query)
	for i, rec := range response.Recommendations {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "%d. %s [%s]\n", i+1, rec.AssessmentName, rec.TestType)
		if rec.AssessmentURL != "" {
			fmt.Fprintf(w, "URL: %s\n", rec.AssessmentURL)
		}
		if rec.Description != "" {
			fmt.Fprintf(w, "\n%s\n", utils.Truncate(rec.Description, 200))
		}
		fmt.Fprintln(w)
	}
}

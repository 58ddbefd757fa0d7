package rerank

import (
	"fmt"
	"strings"

	"github.com/skillsift/skillsift/internal/models"
	"github.com/skillsift/skillsift/pkg/utils"
)

// maxDescriptionLen bounds each candidate's description in the prompt so
// a large candidate set stays well inside the model context window.
const maxDescriptionLen = 300

// BuildPrompt renders the rerank prompt: the query followed by a 1-based
// numbered candidate list and an instruction to reply with numbers only.
func BuildPrompt(query string, candidates []models.Assessment) string {
	var b strings.Builder
	b.WriteString("You are an expert in talent assessment. Rank the following assessments by relevance to this query or job description:\n\n")
	b.WriteString("Query: ")
	b.WriteString(query)
	b.WriteString("\n\nAssessments:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s (%s): %s\n", i+1, c.Name, c.Type, utils.Truncate(c.Description, maxDescriptionLen))
	}
	b.WriteString("\nReturn only the numbers in order of relevance, separated by commas.")
	return b.String()
}

// Package catalog loads the assessment catalog produced by the crawler.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/skillsift/skillsift/internal/models"
)

// Load reads the catalog JSON file at path and returns the assessments in
// file order. Records without an identifier get a minted UUID so every
// index entry can be mapped back to its item; records without a name are
// skipped. An empty catalog is not an error.
func Load(path string) ([]models.Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raw []models.Assessment
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	items := make([]models.Assessment, 0, len(raw))
	for _, a := range raw {
		if strings.TrimSpace(a.Name) == "" {
			continue
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		items = append(items, a)
	}
	return items, nil
}

package e2e

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/skillsift/skillsift/internal/config"
	"github.com/skillsift/skillsift/internal/models"
)

// WriteCatalog writes items as a catalog JSON file under dir and returns
// its path.
func WriteCatalog(dir string, items []models.Assessment) (string, error) {
	path := filepath.Join(dir, "catalog.json")
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// TestConfig returns a config pointing all storage paths into dir.
func TestConfig(dir, catalogPath string) *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.CatalogPath = catalogPath
	cfg.Storage.IndexPath = filepath.Join(dir, "catalog.index")
	cfg.Storage.MetadataPath = filepath.Join(dir, "catalog.db")
	return cfg
}

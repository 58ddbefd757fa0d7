package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/skillsift/skillsift/internal/models"
)

func TestSQLiteStore_ReplaceList(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	first := []models.Assessment{
		{ID: "1", Name: "Python Skills Test", Type: "Knowledge", URL: "https://example.com/p"},
		{ID: "2", Name: "Team Collaboration Assessment", Type: "Personality"},
	}
	if err := store.Replace(ctx, first); err != nil {
		t.Fatal(err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "1" || items[1].ID != "2" {
		t.Error("List must preserve insertion order")
	}
	if items[0].URL != "https://example.com/p" {
		t.Errorf("URL = %q", items[0].URL)
	}

	// Replace swaps wholesale, it never merges.
	second := []models.Assessment{{ID: "3", Name: "Numerical Reasoning"}}
	if err := store.Replace(ctx, second); err != nil {
		t.Fatal(err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestSQLiteStore_EmptyReplace(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.Replace(ctx, nil); err != nil {
		t.Fatal(err)
	}
	items, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty store, got %d items", len(items))
	}
}

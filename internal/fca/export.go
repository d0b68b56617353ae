package fca

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// ExportConcepts writes concepts as an indented JSON array.
func ExportConcepts(path string, concepts []models.Concept) error {
	if concepts == nil {
		concepts = []models.Concept{}
	}
	data, err := json.MarshalIndent(concepts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal concepts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create concepts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write concepts: %w", err)
	}
	return nil
}

package fca

import "github.com/raphaelgruber/umlfca/internal/models"

// Score sets each concept's relevance to
// (|extent|/maxExtent) * (|intent|/maxIntent) * 100, relative to the batch.
func Score(concepts []models.Concept) {
	if len(concepts) == 0 {
		return
	}

	maxExtent, maxIntent := 0, 0
	for _, c := range concepts {
		maxExtent = max(maxExtent, len(c.Extent))
		maxIntent = max(maxIntent, len(c.Intent))
	}

	for i := range concepts {
		var extentScore, intentScore float64
		if maxExtent > 0 {
			extentScore = float64(len(concepts[i].Extent)) / float64(maxExtent)
		}
		if maxIntent > 0 {
			intentScore = float64(len(concepts[i].Intent)) / float64(maxIntent)
		}
		concepts[i].Relevance = extentScore * intentScore * 100
	}
}

// Filter returns concepts with relevance >= minRelevance and extent size >= minExtentSize.
func Filter(concepts []models.Concept, minRelevance float64, minExtentSize int) []models.Concept {
	out := make([]models.Concept, 0, len(concepts))
	for _, c := range concepts {
		if c.Relevance >= minRelevance && len(c.Extent) >= minExtentSize {
			out = append(out, c)
		}
	}
	return out
}

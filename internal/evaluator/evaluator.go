// Package evaluator scores synthesized abstractions for human review and
// exports the scores as CSV sheets.
package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// Evaluation is the audit record of one abstraction.
type Evaluation struct {
	ID                string
	Name              string
	NameJustification string
	NRS               float64 // name relevance score, [0,1]
	NRSJustification  string
	ARS               float64 // abstraction relevance score, [0,1]
	ARSJustification  string
	Extent            []string
	Intent            []string
	Relevance         float64 // of the matching concept, 0 when none matches
	Confidence        float64
}

// EvaluateAll evaluates candidates in order with IDs C_<timestamp>_<n>. A
// candidate is matched to the concept with exactly the same extent set.
func EvaluateAll(cands []*models.Candidate, concepts []models.Concept, timestamp string) []Evaluation {
	byExtent := make(map[string]*models.Concept, len(concepts))
	for i := range concepts {
		byExtent[models.SetKey(concepts[i].Extent)] = &concepts[i]
	}

	evals := make([]Evaluation, 0, len(cands))
	for i, c := range cands {
		id := fmt.Sprintf("C_%s_%d", timestamp, i+1)
		evals = append(evals, Evaluate(id, c, byExtent[models.SetKey(c.Extent)]))
	}
	return evals
}

// Evaluate scores one candidate. concept may be nil.
func Evaluate(id string, c *models.Candidate, concept *models.Concept) Evaluation {
	nrs := NameRelevance(c.Name, c.Confidence)
	ars := AbstractionRelevance(len(c.Extent), len(c.Intent), concept)

	ev := Evaluation{
		ID:                id,
		Name:              c.Name,
		NameJustification: nameJustification(c),
		NRS:               nrs,
		NRSJustification:  nrsJustification(c.Name, nrs),
		ARS:               ars,
		ARSJustification:  arsJustification(len(c.Extent), len(c.Intent), ars),
		Extent:            c.Extent,
		Intent:            c.Intent,
		Confidence:        c.Confidence,
	}
	if concept != nil {
		ev.Relevance = concept.Relevance
	}
	return ev
}

// NameRelevance starts from the naming confidence, penalizes short
// "Abstract..." names and rewards longer specific ones.
func NameRelevance(name string, confidence float64) float64 {
	score := confidence
	generic := strings.HasPrefix(name, "Abstract")
	if generic && len(name) < 15 {
		score *= 0.8
	}
	if len(name) > 8 && !generic {
		score = math.Min(1, score*1.1)
	}
	return round2(score)
}

// AbstractionRelevance weighs the concept's relevance (or extent/10 without
// a concept) against the reuse value of the shared features.
func AbstractionRelevance(extentSize, intentSize int, concept *models.Concept) float64 {
	fcaScore := float64(extentSize) / 10
	if concept != nil {
		fcaScore = concept.Relevance / 100
	}
	value := math.Min(1, (float64(extentSize)/5+float64(intentSize)/10)/2)
	return round2(math.Min(1, fcaScore*0.6+value*0.4))
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func nameJustification(c *models.Candidate) string {
	var attrs, methods []string
	for _, f := range c.Intent {
		if strings.Contains(f, ":") || !strings.HasSuffix(f, ")") {
			attrs = append(attrs, f)
		}
		if strings.HasSuffix(f, ")") {
			methods = append(methods, f)
		}
	}

	var parts []string
	if len(attrs) > 0 {
		names := make([]string, 0, 3)
		for _, a := range firstN(attrs, 3) {
			before, _, _ := strings.Cut(a, ":")
			names = append(names, strings.TrimSpace(before))
		}
		parts = append(parts, "Common attributes: "+strings.Join(names, ", "))
	}
	if len(methods) > 0 {
		names := make([]string, 0, 3)
		for _, m := range firstN(methods, 3) {
			names = append(names, strings.TrimSpace(strings.ReplaceAll(m, "()", "")))
		}
		parts = append(parts, "Common methods: "+strings.Join(names, ", "))
	}
	if len(c.Extent) > 0 {
		parts = append(parts, fmt.Sprintf("Shared by %d classes: %s", len(c.Extent), strings.Join(firstN(c.Extent, 3), ", ")))
	}
	return strings.Join(parts, ". ") + "."
}

func nrsJustification(name string, nrs float64) string {
	switch {
	case nrs >= 0.8:
		return fmt.Sprintf("Name '%s' clearly describes the common concept and is semantically appropriate.", name)
	case nrs >= 0.6:
		return fmt.Sprintf("Name '%s' is adequate but could be more descriptive of the common features.", name)
	case nrs >= 0.4:
		return fmt.Sprintf("Name '%s' is generic; derived from common attribute but not strongly semantic.", name)
	default:
		return fmt.Sprintf("Name '%s' is a fallback naming; low semantic meaning.", name)
	}
}

func arsJustification(extentSize, intentSize int, ars float64) string {
	switch {
	case ars >= 0.8:
		return fmt.Sprintf("Highly valuable abstraction: %d classes share %d features. Significant code reuse opportunity.", extentSize, intentSize)
	case ars >= 0.6:
		return fmt.Sprintf("Useful abstraction: %d classes with %d common features. Good for code organization.", extentSize, intentSize)
	case ars >= 0.4:
		return fmt.Sprintf("Moderate value: %d classes share %d features. Limited reuse benefit.", extentSize, intentSize)
	default:
		return fmt.Sprintf("Low value: Only %d classes with %d common features. Questionable abstraction.", extentSize, intentSize)
	}
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// Package synth turns retained formal concepts into parent abstraction
// candidates and reconciles them into a de-duplicated hierarchy.
package synth

import (
	"log/slog"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// NewCandidates creates one unnamed candidate per concept, copying extent and intent.
func NewCandidates(concepts []models.Concept) []*models.Candidate {
	cands := make([]*models.Candidate, 0, len(concepts))
	for _, c := range concepts {
		cands = append(cands, &models.Candidate{
			Extent:    append([]string(nil), c.Extent...),
			Intent:    append([]string(nil), c.Intent...),
			Relevance: c.Relevance,
		})
	}
	return cands
}

// ExpandExtents appends to each candidate's extent every entity whose
// features are a superset of the candidate's intent. Extents only grow, and
// an entity may join several candidates. Candidates with an empty intent are
// left alone since every entity would qualify. Returns the number of
// memberships added.
func ExpandExtents(cands []*models.Candidate, d *models.Diagram, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}

	entities := d.Entities()
	features := make(map[string]map[string]struct{}, len(entities))
	for _, e := range entities {
		features[e.Name] = e.Features()
	}

	added := 0
	for _, c := range cands {
		if len(c.Intent) == 0 {
			logger.Debug("skipping expansion for candidate without shared features", "extent", c.Extent)
			continue
		}
		for _, e := range entities {
			if c.Contains(e.Name) || !subset(c.Intent, features[e.Name]) {
				continue
			}
			c.Extent = append(c.Extent, e.Name)
			added++
			logger.Debug("expanded candidate extent", "entity", e.Name, "intent", c.Intent)
		}
	}
	return added
}

func subset(items []string, set map[string]struct{}) bool {
	for _, it := range items {
		if _, ok := set[it]; !ok {
			return false
		}
	}
	return true
}

// MergeByName collapses candidates sharing a name. Groups keep the order of
// their first member. The member with the highest relevance (earliest on
// ties) survives, absorbing the union of every member's extent and intent.
func MergeByName(cands []*models.Candidate) []*models.Candidate {
	groups := make(map[string][]*models.Candidate)
	var order []string
	for _, c := range cands {
		if _, ok := groups[c.Name]; !ok {
			order = append(order, c.Name)
		}
		groups[c.Name] = append(groups[c.Name], c)
	}

	merged := make([]*models.Candidate, 0, len(order))
	for _, name := range order {
		group := groups[name]
		if len(group) == 1 {
			merged = append(merged, group[0])
			continue
		}

		base := group[0]
		for _, c := range group[1:] {
			if c.Relevance > base.Relevance {
				base = c
			}
		}

		extent := append([]string(nil), base.Extent...)
		intent := append([]string(nil), base.Intent...)
		for _, c := range group {
			if c == base {
				continue
			}
			extent = models.Union(extent, c.Extent)
			intent = models.Union(intent, c.Intent)
		}
		base.Extent = extent
		base.Intent = intent
		merged = append(merged, base)
	}
	return merged
}

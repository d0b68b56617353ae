package models

// Concept is a formal concept: the entities (extent) sharing a set of features (intent).
type Concept struct {
	Extent    []string `json:"extent"`
	Intent    []string `json:"intent"`
	Relevance float64  `json:"relevance_score"` // [0,100]
}

// Candidate is a parent abstraction synthesized from a concept.
type Candidate struct {
	Extent     []string `json:"extent"`
	Intent     []string `json:"intent"`
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"` // [0,1]

	// Relevance is copied from the originating concept; it only breaks ties during merge.
	Relevance float64 `json:"-"`
}

// Contains reports whether name is in the candidate's extent.
func (c *Candidate) Contains(name string) bool {
	for _, e := range c.Extent {
		if e == name {
			return true
		}
	}
	return false
}

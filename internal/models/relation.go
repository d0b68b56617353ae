package models

// RelationKind is the closed set of relationship kinds a diagram can declare.
type RelationKind string

const (
	Inheritance RelationKind = "inheritance"
	Composition RelationKind = "composition"
	Aggregation RelationKind = "aggregation"
	Association RelationKind = "association"
)

// Relationship is a typed link between two entities.
// Source is the child for inheritance and the whole for composition/aggregation.
type Relationship struct {
	Source            string       `json:"source"`
	Target            string       `json:"target"`
	Kind              RelationKind `json:"kind"`
	SourceCardinality string       `json:"source_cardinality,omitempty"`
	TargetCardinality string       `json:"target_cardinality,omitempty"`
	Label             string       `json:"label,omitempty"`
}

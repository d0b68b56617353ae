package models

// Entity is a class-like unit parsed from a diagram.
type Entity struct {
	Name        string   `json:"name"`
	Attributes  []string `json:"attributes"`
	Methods     []string `json:"methods"`
	Stereotypes []string `json:"stereotypes,omitempty"`
}

// Features returns the entity's attributes and methods as a set of exact strings.
func (e *Entity) Features() map[string]struct{} {
	set := make(map[string]struct{}, len(e.Attributes)+len(e.Methods))
	for _, a := range e.Attributes {
		set[a] = struct{}{}
	}
	for _, m := range e.Methods {
		set[m] = struct{}{}
	}
	return set
}

// HasStereotype reports whether the entity carries the given tag.
func (e *Entity) HasStereotype(tag string) bool {
	for _, s := range e.Stereotypes {
		if s == tag {
			return true
		}
	}
	return false
}

// UnparsedLine is a source line the parser could not classify.
type UnparsedLine struct {
	Number int    `json:"number"` // 1-based
	Text   string `json:"text"`
}

// Diagram is the parsed model of one diagram source.
// Entities keep their first declaration position; a redeclaration replaces the record in place.
type Diagram struct {
	entities map[string]*Entity
	order    []string

	Relationships []Relationship
	Unparsed      []UnparsedLine
}

// NewDiagram creates an empty diagram.
func NewDiagram() *Diagram {
	return &Diagram{entities: make(map[string]*Entity)}
}

// PutEntity stores e, replacing any entity with the same name.
func (d *Diagram) PutEntity(e *Entity) {
	if d.entities == nil {
		d.entities = make(map[string]*Entity)
	}
	if _, exists := d.entities[e.Name]; !exists {
		d.order = append(d.order, e.Name)
	}
	d.entities[e.Name] = e
}

// Entity returns the entity with the given name.
func (d *Diagram) Entity(name string) (*Entity, bool) {
	e, ok := d.entities[name]
	return e, ok
}

// Entities returns entities in declaration order.
func (d *Diagram) Entities() []*Entity {
	out := make([]*Entity, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.entities[name])
	}
	return out
}

// EntityCount returns the number of distinct entities.
func (d *Diagram) EntityCount() int {
	return len(d.order)
}

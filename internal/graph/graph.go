// Package graph builds the knowledge graph of a parsed diagram: class,
// attribute and method nodes linked by membership and relationship edges.
package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// Node types.
const (
	NodeClass     = "class"
	NodeAttribute = "attribute"
	NodeMethod    = "method"
)

// Membership edge relations.
const (
	RelHasAttribute = "has_attribute"
	RelHasMethod    = "has_method"
)

// Node is a graph vertex. Class nodes carry the member lists; attribute and
// method nodes carry Value and ParentClass. Nodes created only because a
// relationship references them have no type.
type Node struct {
	ID          string
	Type        string
	Attributes  []string
	Methods     []string
	Stereotypes []string
	Value       string
	ParentClass string
}

// MarshalJSON emits the node-link layout: "id" plus only the keys the node type defines.
func (n *Node) MarshalJSON() ([]byte, error) {
	m := map[string]any{"id": n.ID}
	switch n.Type {
	case NodeClass:
		m["type"] = n.Type
		m["attributes"] = nonNil(n.Attributes)
		m["methods"] = nonNil(n.Methods)
		m["stereotypes"] = nonNil(n.Stereotypes)
	case NodeAttribute, NodeMethod:
		m["type"] = n.Type
		m["value"] = n.Value
		m["parent_class"] = n.ParentClass
	}
	return json.Marshal(m)
}

// Edge is a directed link. Relation is a membership relation or a relationship kind.
type Edge struct {
	Source            string `json:"source"`
	Target            string `json:"target"`
	Relation          string `json:"relation"`
	SourceCardinality string `json:"cardinality_source,omitempty"`
	TargetCardinality string `json:"cardinality_target,omitempty"`
	Label             string `json:"label,omitempty"`
}

// Graph is a directed simple graph: at most one edge per ordered node pair,
// a later edge replacing an earlier one.
type Graph struct {
	nodes     []*Node
	nodeIndex map[string]int
	edges     []*Edge
	edgeIndex map[[2]string]int
	counter   int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[[2]string]int),
	}
}

// Build creates the knowledge graph of d. Every attribute and method
// occurrence gets its own node, identified as <class>_<declaration>_<n>.
func Build(d *models.Diagram) *Graph {
	g := New()
	for _, e := range d.Entities() {
		g.putNode(&Node{
			ID:          e.Name,
			Type:        NodeClass,
			Attributes:  e.Attributes,
			Methods:     e.Methods,
			Stereotypes: e.Stereotypes,
		})
		for _, a := range e.Attributes {
			g.addMember(e.Name, a, NodeAttribute, RelHasAttribute)
		}
		for _, m := range e.Methods {
			g.addMember(e.Name, m, NodeMethod, RelHasMethod)
		}
	}

	for _, r := range d.Relationships {
		g.putEdge(&Edge{
			Source:            r.Source,
			Target:            r.Target,
			Relation:          string(r.Kind),
			SourceCardinality: r.SourceCardinality,
			TargetCardinality: r.TargetCardinality,
			Label:             r.Label,
		})
	}
	return g
}

func (g *Graph) addMember(class, value, nodeType, relation string) {
	g.counter++
	id := fmt.Sprintf("%s_%s_%d", class, value, g.counter)
	g.putNode(&Node{ID: id, Type: nodeType, Value: value, ParentClass: class})
	g.putEdge(&Edge{Source: class, Target: id, Relation: relation})
}

func (g *Graph) putNode(n *Node) {
	if i, ok := g.nodeIndex[n.ID]; ok {
		g.nodes[i] = n
		return
	}
	g.nodeIndex[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

func (g *Graph) putEdge(e *Edge) {
	for _, id := range []string{e.Source, e.Target} {
		if _, ok := g.nodeIndex[id]; !ok {
			g.putNode(&Node{ID: id})
		}
	}
	key := [2]string{e.Source, e.Target}
	if i, ok := g.edgeIndex[key]; ok {
		g.edges[i] = e
		return
	}
	g.edgeIndex[key] = len(g.edges)
	g.edges = append(g.edges, e)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns edges in insertion order.
func (g *Graph) Edges() []*Edge { return g.edges }

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

// OutEdges returns the edges leaving id.
func (g *Graph) OutEdges(id string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

type nodeLink struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Graph      map[string]any `json:"graph"`
	Nodes      []*Node        `json:"nodes"`
	Edges      []*Edge        `json:"edges"`
}

// MarshalJSON emits the node-link document.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := nodeLink{
		Directed: true,
		Graph:    map[string]any{},
		Nodes:    g.nodes,
		Edges:    g.edges,
	}
	if doc.Nodes == nil {
		doc.Nodes = []*Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []*Edge{}
	}
	return json.Marshal(doc)
}

// Export writes the node-link document to path.
func (g *Graph) Export(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create graph directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

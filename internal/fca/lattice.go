package fca

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// latticeDoc mirrors the XML lattice document. The root element name is not checked.
type latticeDoc struct {
	Concepts []latticeConcept `xml:"Concept"`
}

type latticeConcept struct {
	ID          string   `xml:"ID"`
	Objects     []string `xml:"Extent>Object_Ref"`
	Attributes  []string `xml:"Intent>Attribute_Ref"`
	UpperCovers []string `xml:"UpperCovers>Concept_Ref"`
}

type latticeNode struct {
	extent []string
	intent []string
}

// ReadLatticeXML decodes concept records. A concept listing no objects but
// some attributes inherits the objects of every concept below it (those that
// reach it through upper covers). Concepts with an empty extent or intent, or
// fewer than minExtentSize objects, are dropped.
func ReadLatticeXML(r io.Reader, minExtentSize int) ([]models.Concept, error) {
	var doc latticeDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode lattice: %w", err)
	}

	res := &coverResolver{
		nodes:    make(map[string]*latticeNode),
		children: make(map[string][]string),
		memo:     make(map[string][]string),
	}

	var order []string
	for _, lc := range doc.Concepts {
		id := strings.TrimSpace(lc.ID)
		if id == "" {
			continue
		}
		if _, seen := res.nodes[id]; !seen {
			order = append(order, id)
		}
		res.nodes[id] = &latticeNode{
			extent: trimAll(lc.Objects),
			intent: trimAll(lc.Attributes),
		}
		for _, parent := range trimAll(lc.UpperCovers) {
			res.children[parent] = append(res.children[parent], id)
		}
	}

	var concepts []models.Concept
	for _, id := range order {
		n := res.nodes[id]
		extent := n.extent
		if len(extent) == 0 && len(n.intent) > 0 {
			extent = res.objects(id)
		}
		if len(extent) == 0 || len(n.intent) == 0 || len(extent) < minExtentSize {
			continue
		}
		concepts = append(concepts, models.Concept{
			Extent: models.SortedSet(extent),
			Intent: models.SortedSet(n.intent),
		})
	}
	return concepts, nil
}

// coverResolver unions objects downward through the cover relation. Each
// lookup walks from its own root and visits a concept at most once, so
// cyclic input terminates. Results are memoized per root.
type coverResolver struct {
	nodes    map[string]*latticeNode
	children map[string][]string
	memo     map[string][]string
}

func (r *coverResolver) objects(id string) []string {
	if objs, ok := r.memo[id]; ok {
		return objs
	}

	visited := make(map[string]bool)
	var objs []string

	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, ok := r.nodes[cur]
		if !ok || visited[cur] {
			continue
		}
		visited[cur] = true
		objs = models.Union(objs, n.extent)

		kids := r.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	r.memo[id] = objs
	return objs
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

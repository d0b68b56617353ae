// Package generator renders diagrams enriched with synthesized abstractions.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/umlfca/internal/models"
)

var relationSymbols = map[models.RelationKind]string{
	models.Inheritance: "--|>",
	models.Composition: "*--",
	models.Aggregation: "o--",
	models.Association: "--",
}

// Generate renders the diagram with one abstract class per candidate. Each
// original class omits the features it now inherits from a candidate listing
// it in its extent.
func Generate(d *models.Diagram, cands []*models.Candidate) string {
	inherited := inheritedFeatures(cands)

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("@startuml")
	line("")

	line("' Abstract Classes (Generated)")
	for _, c := range cands {
		line("abstract class %s {", c.Name)
		for _, f := range c.Intent {
			line("  %s", f)
		}
		line("}")
	}
	line("")

	line("' Original Classes")
	for _, e := range d.Entities() {
		skip := inherited[e.Name]
		line("%s {", classHeader(e))
		for _, a := range e.Attributes {
			if _, ok := skip[a]; !ok {
				line("  %s", a)
			}
		}
		for _, m := range e.Methods {
			if _, ok := skip[m]; !ok {
				line("  %s", m)
			}
		}
		line("}")
	}
	line("")

	line("' Inheritance Relationships to Abstract Classes")
	for _, c := range cands {
		for _, child := range c.Extent {
			if child == c.Name {
				continue
			}
			line("%s --|> %s", child, c.Name)
		}
	}
	line("")

	line("' Original Relationships")
	for _, r := range d.Relationships {
		line("%s", RenderRelationship(r))
	}
	line("")
	b.WriteString("@enduml")

	return b.String()
}

// WriteFile renders the diagram to path, creating parent directories.
func WriteFile(path string, d *models.Diagram, cands []*models.Candidate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Generate(d, cands)), 0644); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}
	return nil
}

// RenderRelationship formats r as `Source "card" sym "card" Target : label`.
func RenderRelationship(r models.Relationship) string {
	sym, ok := relationSymbols[r.Kind]
	if !ok {
		sym = relationSymbols[models.Association]
	}

	parts := []string{r.Source}
	if r.SourceCardinality != "" {
		parts = append(parts, quote(r.SourceCardinality))
	}
	parts = append(parts, sym)
	if r.TargetCardinality != "" {
		parts = append(parts, quote(r.TargetCardinality))
	}
	parts = append(parts, r.Target)

	out := strings.Join(parts, " ")
	if r.Label != "" {
		out += " : " + r.Label
	}
	return out
}

func quote(s string) string { return `"` + s + `"` }

func classHeader(e *models.Entity) string {
	keyword := "class"
	var tags []string
	for _, st := range e.Stereotypes {
		if st == "abstract" {
			keyword = "abstract class"
			continue
		}
		tags = append(tags, "<<"+st+">>")
	}
	if len(tags) == 0 {
		return keyword + " " + e.Name
	}
	return keyword + " " + e.Name + " " + strings.Join(tags, " ")
}

func inheritedFeatures(cands []*models.Candidate) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	for _, c := range cands {
		for _, child := range c.Extent {
			set, ok := out[child]
			if !ok {
				set = make(map[string]struct{})
				out[child] = set
			}
			for _, f := range c.Intent {
				set[f] = struct{}{}
			}
		}
	}
	return out
}

// Package parser reads PlantUML class diagrams into a models.Diagram.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// ErrEmptyInput is returned by ParseStrict when the source declares nothing.
var ErrEmptyInput = errors.New("diagram declares no classes or relationships")

// ParseError lists lines that could not be classified.
type ParseError struct {
	Lines []models.UnparsedLine
}

func (e *ParseError) Error() string {
	if len(e.Lines) == 1 {
		return fmt.Sprintf("line %d not recognized: %q", e.Lines[0].Number, e.Lines[0].Text)
	}
	return fmt.Sprintf("%d lines not recognized (first at line %d: %q)",
		len(e.Lines), e.Lines[0].Number, e.Lines[0].Text)
}

var (
	classDeclRegex  = regexp.MustCompile(`^(abstract\s+)?class\s+(.+)$`)
	stereotypeRegex = regexp.MustCompile(`<<\s*([^>]+?)\s*>>`)

	// name [ "cardinality" ]
	sourceRegex = regexp.MustCompile(`^([\p{L}\p{N}_]+)(?:\s+"([^"]+)")?`)
	// [ "cardinality" ] name [ : ("label" | label) ]
	targetRegex = regexp.MustCompile(`^(?:"([^"]+)"\s+)?([\p{L}\p{N}_]+)(?:\s*:\s*(?:"([^"]+)"|(.+)))?`)
)

type relationSymbol struct {
	text string
	kind models.RelationKind
	// reversed symbols point from right to left; sides are swapped after matching.
	reversed bool
}

// Order matters: the first symbol found in a line wins.
var relationSymbols = []relationSymbol{
	{"--|>", models.Inheritance, false},
	{"<|--", models.Inheritance, true},
	{"--*", models.Composition, true},
	{"*--", models.Composition, false},
	{"--o", models.Aggregation, true},
	{"o--", models.Aggregation, false},
	{"-->", models.Association, false},
	{"<--", models.Association, true},
	{"--", models.Association, false},
}

// Parse reads diagram source. It never fails: lines it cannot classify are
// skipped and recorded in Diagram.Unparsed.
func Parse(content string) *models.Diagram {
	d := models.NewDiagram()

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *models.Entity
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || isCommentOrDirective(line) {
			continue
		}

		switch {
		case classDeclRegex.MatchString(line):
			e, closed, ok := parseClassDeclaration(line)
			current = nil
			if !ok {
				d.Unparsed = append(d.Unparsed, models.UnparsedLine{Number: lineNum, Text: line})
				continue
			}
			d.PutEntity(e)
			// Members may follow without braces or after a "{" on the next line.
			if !closed {
				current = e
			}

		case line == "}":
			current = nil

		case current != nil && line == "{":
			continue

		case current != nil && isSeparator(line):
			continue

		case current != nil && isMember(line):
			if strings.Contains(line, "(") {
				current.Methods = append(current.Methods, line)
			} else {
				current.Attributes = append(current.Attributes, line)
			}

		default:
			rel, ok := parseRelationship(line)
			if !ok {
				d.Unparsed = append(d.Unparsed, models.UnparsedLine{Number: lineNum, Text: line})
				continue
			}
			d.Relationships = append(d.Relationships, rel)
		}
	}

	return d
}

// ParseStrict parses like Parse but fails when any line was skipped or the
// diagram is empty.
func ParseStrict(content string) (*models.Diagram, error) {
	d := Parse(content)
	if len(d.Unparsed) > 0 {
		return d, &ParseError{Lines: d.Unparsed}
	}
	if d.EntityCount() == 0 && len(d.Relationships) == 0 {
		return d, ErrEmptyInput
	}
	return d, nil
}

func isCommentOrDirective(line string) bool {
	return strings.HasPrefix(line, "'") ||
		strings.HasPrefix(line, "/'") ||
		strings.HasPrefix(line, "@") ||
		strings.HasPrefix(line, "!") ||
		strings.HasPrefix(line, "skinparam ")
}

func isMember(line string) bool {
	switch line[0] {
	case '+', '-', '#':
		return true
	}
	return false
}

// isSeparator matches PlantUML class body separators such as "--" or ".. x ..".
func isSeparator(line string) bool {
	for _, sep := range []string{"--", "==", "..", "__"} {
		if strings.HasPrefix(line, sep) && strings.HasSuffix(line, sep) {
			return true
		}
	}
	return false
}

// parseClassDeclaration returns the new entity and whether the declaration
// also closes its block ("class A {}"). ok is false when no name is given.
func parseClassDeclaration(line string) (e *models.Entity, closed, ok bool) {
	m := classDeclRegex.FindStringSubmatch(line)
	rest := m[2]

	e = &models.Entity{Attributes: []string{}, Methods: []string{}}
	if m[1] != "" {
		e.Stereotypes = append(e.Stereotypes, "abstract")
	}
	for _, st := range stereotypeRegex.FindAllStringSubmatch(rest, -1) {
		e.Stereotypes = append(e.Stereotypes, st[1])
	}
	rest = strings.TrimSpace(stereotypeRegex.ReplaceAllString(rest, " "))

	closed = strings.HasSuffix(rest, "}")
	rest = strings.NewReplacer("{", " ", "}", " ").Replace(rest)

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, false, false
	}
	e.Name = fields[0]
	return e, closed, true
}

func parseRelationship(line string) (models.Relationship, bool) {
	for _, sym := range relationSymbols {
		if !strings.Contains(line, sym.text) {
			continue
		}
		parts := strings.Split(line, sym.text)
		if len(parts) != 2 {
			continue
		}
		left := strings.TrimSpace(parts[0])
		right := strings.TrimSpace(parts[1])

		rel := models.Relationship{Kind: sym.kind}

		if m := sourceRegex.FindStringSubmatch(left); m != nil {
			rel.Source = m[1]
			rel.SourceCardinality = m[2]
		} else if fields := strings.Fields(left); len(fields) > 0 {
			rel.Source = fields[0]
		} else {
			return models.Relationship{}, false
		}

		if m := targetRegex.FindStringSubmatch(right); m != nil {
			rel.TargetCardinality = m[1]
			rel.Target = m[2]
			label := m[3]
			if label == "" {
				label = m[4]
			}
			rel.Label = strings.TrimSpace(label)
		} else if fields := strings.Fields(right); len(fields) > 0 {
			rel.Target = fields[0]
		} else {
			return models.Relationship{}, false
		}

		if sym.reversed {
			rel.Source, rel.Target = rel.Target, rel.Source
			rel.SourceCardinality, rel.TargetCardinality = rel.TargetCardinality, rel.SourceCardinality
		}
		return rel, true
	}
	return models.Relationship{}, false
}

package service

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/umlfca/internal/models"
	"github.com/raphaelgruber/umlfca/internal/parser"
)

// ValidateResult reports what the parser recognized in one file.
type ValidateResult struct {
	Path          string
	Classes       int
	Relationships int
	Unparsed      []models.UnparsedLine
}

// Validate parses the file at path without running the pipeline. In strict
// mode unrecognized lines or an empty diagram are reported as an error
// alongside the result.
func Validate(path string, strict bool) (*ValidateResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var d *models.Diagram
	if strict {
		d, err = parser.ParseStrict(string(content))
	} else {
		d = parser.Parse(string(content))
	}

	res := &ValidateResult{
		Path:          path,
		Classes:       d.EntityCount(),
		Relationships: len(d.Relationships),
		Unparsed:      d.Unparsed,
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

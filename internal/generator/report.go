package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// ReportInput carries what the comparison report describes.
type ReportInput struct {
	InputPath     string
	OutputPath    string
	Classes       int
	Relationships int
	Concepts      int
	Relevant      int
	ConceptSource string
	Abstractions  []*models.Candidate
}

// Report renders a Markdown comparison between the original and the enhanced diagram.
func Report(in ReportInput) string {
	var b strings.Builder
	w := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	w("# UML Diagram Enhancement Report")
	w("")
	w("**Original Diagram**: %s", in.InputPath)
	w("**Enhanced Diagram**: %s", in.OutputPath)
	w("")
	w("## Summary")
	w("")
	w("| Step | Count |")
	w("|---|---|")
	w("| Classes parsed | %d |", in.Classes)
	w("| Relationships parsed | %d |", in.Relationships)
	w("| Formal concepts (%s) | %d |", in.ConceptSource, in.Concepts)
	w("| Relevant concepts | %d |", in.Relevant)
	w("| Abstract classes | %d |", len(in.Abstractions))
	w("")

	if len(in.Abstractions) == 0 {
		w("No shared feature group passed the relevance filter; the diagram is unchanged apart from formatting.")
		return b.String()
	}

	w("The enhanced diagram includes the following improvements:")
	w("- Added abstract classes based on formal concept analysis")
	w("- Extracted shared attributes and methods into superclasses")
	w("")
	w("## Abstract Classes")
	for _, c := range in.Abstractions {
		w("")
		w("### %s", c.Name)
		w("")
		w("- **Subclasses**: %s", strings.Join(c.Extent, ", "))
		w("- **Naming confidence**: %.2f", c.Confidence)
		w("- **Shared features**:")
		for _, f := range c.Intent {
			w("  - `%s`", f)
		}
	}
	return b.String()
}

// WriteReport renders the report to path, creating parent directories.
func WriteReport(path string, in ReportInput) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Report(in)), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

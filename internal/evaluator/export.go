package evaluator

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const agreeScale = "agree (2), do not agree (0), perhaps (1)"

// The review sheet has 23 columns: 8 filled by the tool, 14 left for the
// reviewer's verdicts and comments, then a free comment column.
var templateHeader = [][]string{
	{
		"Evaluation of the result", "", "Answer of the LLM", "", "", "", "", "",
		"Your evaluation", "and your comments", "", "", "", "", "", "", "", "", "", "", "", "", "",
	},
	{
		" ", "Id Concept", "Concept name", "Name justification", "Name relevance score (NRS)",
		"Justification for the NRS score", "Abstraction relevance score (ARS)", "justification for the ARS score",
		"Concept name", "", "Other concept name you imagine", "", "Name justification", "",
		"Name relevance score (NRS)", "", "justification for the NRS score", "",
		"Abstraction relevance score (ARS)", "", "Justification for the ARS score", "", "Other comments",
	},
	{
		"output type", "string", "string", "string", "In [0..1]", "string", "In [0..1]", "string",
		agreeScale, "comment Concept name",
		"string", "comment Other concept name",
		agreeScale, "comment Name Justification (especially for 1 and 2)",
		agreeScale, "comment NRS (especially for 1 and 2)",
		agreeScale, "comment Justification NRS (especially for 1 and 2)",
		agreeScale, "comment ARS (especially for 1 and 2)",
		agreeScale, "comment Justification ARS (especially for 1 and 2)",
		"string",
	},
}

const reviewerColumns = 14

var simpleHeader = []string{
	"Id Concept",
	"Concept name",
	"Name justification",
	"Name relevance score (NRS)",
	"Justification for the NRS score",
	"Abstraction relevance score (ARS)",
	"justification for the ARS score",
	"Extent (child classes)",
	"Intent (common features)",
	"FCA Relevance Score",
	"LLM Confidence",
}

// WriteTemplateCSV writes the ";"-delimited review sheet. Without header only
// data rows are written.
func WriteTemplateCSV(w io.Writer, evals []Evaluation, header bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if header {
		if err := cw.WriteAll(templateHeader); err != nil {
			return fmt.Errorf("write template header: %w", err)
		}
	}

	for _, ev := range evals {
		row := []string{
			"Run_" + ev.ID,
			ev.ID,
			ev.Name,
			ev.NameJustification,
			formatScore(ev.NRS),
			ev.NRSJustification,
			formatScore(ev.ARS),
			ev.ARSJustification,
		}
		row = append(row, make([]string, reviewerColumns)...)
		row = append(row, fmt.Sprintf("Extent: %s. Intent: %s",
			strings.Join(ev.Extent, ", "), strings.Join(firstN(ev.Intent, 3), ", ")))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write evaluation %s: %w", ev.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSimpleCSV writes one ","-delimited row per evaluation with the key metrics.
func WriteSimpleCSV(w io.Writer, evals []Evaluation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(simpleHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, ev := range evals {
		row := []string{
			ev.ID,
			ev.Name,
			ev.NameJustification,
			formatScore(ev.NRS),
			ev.NRSJustification,
			formatScore(ev.ARS),
			ev.ARSJustification,
			strings.Join(ev.Extent, ", "),
			strings.Join(ev.Intent, ", "),
			formatScore(ev.Relevance),
			formatScore(ev.Confidence),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write evaluation %s: %w", ev.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportTemplateCSV writes the review sheet with its header rows to path.
func ExportTemplateCSV(path string, evals []Evaluation) error {
	return writeFile(path, func(w io.Writer) error { return WriteTemplateCSV(w, evals, true) })
}

// ExportSimpleCSV writes the flat sheet to path.
func ExportSimpleCSV(path string, evals []Evaluation) error {
	return writeFile(path, func(w io.Writer) error { return WriteSimpleCSV(w, evals) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create evaluation directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create evaluation file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// formatScore always keeps a decimal point ("1.0", "0.72").
func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

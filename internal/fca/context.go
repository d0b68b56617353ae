// Package fca builds formal contexts from diagrams and extracts, scores and
// filters formal concepts.
package fca

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// PresenceMarker marks a feature an object has in the exported table.
const PresenceMarker = "X"

// Context is an objects x features incidence table.
type Context struct {
	Objects  []string // sorted entity names
	Features []string // sorted union of attribute and method strings
	incident map[string]map[string]struct{}
}

// BuildContext projects a diagram into a formal context. Only attributes and
// methods are projected; features compare by exact string.
func BuildContext(d *models.Diagram) *Context {
	c := &Context{incident: make(map[string]map[string]struct{})}

	var all []string
	for _, e := range d.Entities() {
		c.Objects = append(c.Objects, e.Name)
		c.incident[e.Name] = e.Features()
		all = append(all, e.Attributes...)
		all = append(all, e.Methods...)
	}
	sort.Strings(c.Objects)
	c.Features = models.SortedSet(all)
	return c
}

// Has reports whether object has feature.
func (c *Context) Has(object, feature string) bool {
	_, ok := c.incident[object][feature]
	return ok
}

// Extent returns the objects having feature, in object order.
func (c *Context) Extent(feature string) []string {
	var out []string
	for _, o := range c.Objects {
		if c.Has(o, feature) {
			out = append(out, o)
		}
	}
	return out
}

// WriteCSV writes the table: an empty corner header, one column per feature,
// one row per object with PresenceMarker or an empty cell.
func (c *Context) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if len(c.Objects) == 0 || len(c.Features) == 0 {
		cw.Flush()
		return cw.Error()
	}

	if err := cw.Write(append([]string{""}, c.Features...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(c.Features)+1)
	for _, o := range c.Objects {
		row[0] = o
		for i, f := range c.Features {
			row[i+1] = ""
			if c.Has(o, f) {
				row[i+1] = PresenceMarker
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", o, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Bytes renders the CSV table.
func (c *Context) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportCSV writes the table to path, creating parent directories.
func (c *Context) ExportCSV(path string) error {
	data, err := c.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create context directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write context: %w", err)
	}
	return nil
}

// ReadContextCSV reads a table written by WriteCSV. Cells holding "X", "x",
// "True", "true" or "1" count as present.
func ReadContextCSV(r io.Reader) (*Context, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}

	c := &Context{incident: make(map[string]map[string]struct{})}
	if len(records) == 0 {
		return c, nil
	}

	header := records[0]
	if len(header) > 1 {
		c.Features = append(c.Features, header[1:]...)
	}
	for _, rec := range records[1:] {
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		object := rec[0]
		c.Objects = append(c.Objects, object)
		set := make(map[string]struct{})
		for i := 1; i < len(rec) && i < len(header); i++ {
			if isPresent(rec[i]) {
				set[header[i]] = struct{}{}
			}
		}
		c.incident[object] = set
	}
	return c, nil
}

func isPresent(cell string) bool {
	switch strings.TrimSpace(cell) {
	case "X", "x", "True", "true", "1":
		return true
	}
	return false
}

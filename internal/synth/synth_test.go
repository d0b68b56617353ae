package synth

import (
	"testing"

	"github.com/raphaelgruber/umlfca/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vehicleDiagram() *models.Diagram {
	d := models.NewDiagram()
	d.PutEntity(&models.Entity{Name: "Car", Attributes: []string{"+wheels: int", "+brand: String"}, Methods: []string{"+drive()"}})
	d.PutEntity(&models.Entity{Name: "Bike", Attributes: []string{"+wheels: int", "+brand: String"}, Methods: []string{"+drive()"}})
	d.PutEntity(&models.Entity{Name: "Truck", Attributes: []string{"+wheels: int", "+brand: String", "+load: int"}, Methods: []string{"+drive()", "+unload()"}})
	d.PutEntity(&models.Entity{Name: "Boat", Attributes: []string{"+brand: String"}})
	return d
}

func TestNewCandidatesCopiesConcept(t *testing.T) {
	concepts := []models.Concept{{Extent: []string{"A", "B"}, Intent: []string{"x"}, Relevance: 42}}
	cands := NewCandidates(concepts)

	require.Len(t, cands, 1)
	assert.Equal(t, []string{"A", "B"}, cands[0].Extent)
	assert.Equal(t, []string{"x"}, cands[0].Intent)
	assert.Equal(t, 42.0, cands[0].Relevance)
	assert.Empty(t, cands[0].Name)

	cands[0].Extent = append(cands[0].Extent, "C")
	assert.Equal(t, []string{"A", "B"}, concepts[0].Extent)
}

func TestExpandExtentsAddsSupersets(t *testing.T) {
	d := vehicleDiagram()
	cands := []*models.Candidate{{
		Extent: []string{"Bike", "Car"},
		Intent: []string{"+brand: String", "+drive()", "+wheels: int"},
	}}

	added := ExpandExtents(cands, d, nil)
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"Bike", "Car", "Truck"}, cands[0].Extent)
}

func TestExpandExtentsMonotonic(t *testing.T) {
	d := vehicleDiagram()
	cands := []*models.Candidate{
		{Extent: []string{"Car", "Ghost"}, Intent: []string{"+brand: String"}},
		{Extent: []string{"Truck"}, Intent: []string{"+load: int"}},
	}
	before := [][]string{
		append([]string(nil), cands[0].Extent...),
		append([]string(nil), cands[1].Extent...),
	}

	ExpandExtents(cands, d, nil)

	for i, c := range cands {
		for _, name := range before[i] {
			assert.True(t, c.Contains(name), "candidate %d lost %s", i, name)
		}
		for _, e := range d.Entities() {
			if subset(c.Intent, e.Features()) {
				assert.True(t, c.Contains(e.Name), "candidate %d missing %s", i, e.Name)
			}
		}
	}
	assert.ElementsMatch(t, []string{"Car", "Ghost", "Bike", "Truck", "Boat"}, cands[0].Extent)
	assert.Equal(t, []string{"Truck"}, cands[1].Extent)
}

func TestExpandExtentsSkipsEmptyIntent(t *testing.T) {
	cands := []*models.Candidate{{Extent: []string{"Car"}}}
	added := ExpandExtents(cands, vehicleDiagram(), nil)
	assert.Zero(t, added)
	assert.Equal(t, []string{"Car"}, cands[0].Extent)
}

func TestMergeByName(t *testing.T) {
	cands := []*models.Candidate{
		{Name: "Manager", Relevance: 50, Extent: []string{"E1", "E2"}, Intent: []string{"a"}},
		{Name: "Other", Relevance: 90, Extent: []string{"E9"}, Intent: []string{"z"}},
		{Name: "Manager", Relevance: 75, Extent: []string{"E3", "E4"}, Intent: []string{"b"}},
		{Name: "Manager", Relevance: 60, Extent: []string{"E5"}, Intent: []string{"a", "c"}},
	}

	merged := MergeByName(cands)
	require.Len(t, merged, 2)

	m := merged[0]
	assert.Equal(t, "Manager", m.Name)
	assert.Equal(t, 75.0, m.Relevance)
	assert.ElementsMatch(t, []string{"E1", "E2", "E3", "E4", "E5"}, m.Extent)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, m.Intent)
	assert.Equal(t, []string{"E3", "E4"}, m.Extent[:2])

	assert.Equal(t, "Other", merged[1].Name)
	assert.Equal(t, []string{"E9"}, merged[1].Extent)
}

func TestMergeByNameTieKeepsEarliest(t *testing.T) {
	first := &models.Candidate{Name: "Shape", Relevance: 40, Extent: []string{"A"}, Intent: []string{"x"}}
	second := &models.Candidate{Name: "Shape", Relevance: 40, Extent: []string{"B"}, Intent: []string{"y"}}

	merged := MergeByName([]*models.Candidate{first, second})
	require.Len(t, merged, 1)
	assert.Same(t, first, merged[0])
	assert.Equal(t, []string{"A", "B"}, merged[0].Extent)
	assert.Equal(t, []string{"x", "y"}, merged[0].Intent)
}

func TestMergeByNameDistinctNamesUnchanged(t *testing.T) {
	cands := []*models.Candidate{
		{Name: "A", Extent: []string{"X"}},
		{Name: "B", Extent: []string{"Y"}},
	}
	assert.Equal(t, cands, MergeByName(cands))
	assert.Empty(t, MergeByName(nil))
}

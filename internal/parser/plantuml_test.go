package parser

import (
	"errors"
	"testing"

	"github.com/raphaelgruber/umlfca/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiagram = `@startuml
class Animal {
  +name: String
  +age: int
  +eat()
  +sleep()
}

class Dog {
  +name: String
  +age: int
  +breed: String
  +bark()
  +eat()
  +sleep()
}

class Cat {
  +name: String
  +age: int
  +color: String
  +meow()
  +eat()
  +sleep()
}

Dog --|> Animal
Cat --|> Animal

@enduml`

func TestParseSimpleClass(t *testing.T) {
	d := Parse("@startuml\nclass Animal {\n  +name: String\n  +eat()\n}\n@enduml")

	animal, ok := d.Entity("Animal")
	require.True(t, ok)
	assert.Equal(t, "Animal", animal.Name)
	assert.Equal(t, []string{"+name: String"}, animal.Attributes)
	assert.Equal(t, []string{"+eat()"}, animal.Methods)
	assert.Empty(t, d.Unparsed)
}

func TestParsePreservesMemberOrder(t *testing.T) {
	d := Parse(sampleDiagram)

	dog, ok := d.Entity("Dog")
	require.True(t, ok)
	assert.Equal(t, []string{"+name: String", "+age: int", "+breed: String"}, dog.Attributes)
	assert.Equal(t, []string{"+bark()", "+eat()", "+sleep()"}, dog.Methods)

	names := []string{}
	for _, e := range d.Entities() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Animal", "Dog", "Cat"}, names)
	assert.Len(t, d.Relationships, 2)
}

func TestParseEmptyDiagram(t *testing.T) {
	d := Parse("@startuml\n@enduml")
	assert.Equal(t, 0, d.EntityCount())
	assert.Empty(t, d.Relationships)
	assert.Empty(t, d.Unparsed)
}

func TestParseRedeclarationOverwrites(t *testing.T) {
	d := Parse("class A {\n +x: int\n}\nclass B {\n}\nclass A {\n +y: int\n}")

	require.Equal(t, 2, d.EntityCount())
	a, _ := d.Entity("A")
	assert.Equal(t, []string{"+y: int"}, a.Attributes)
	assert.Equal(t, "A", d.Entities()[0].Name)
}

func TestParseStereotypes(t *testing.T) {
	d := Parse("abstract class Shape <<Entity>> <<Persistent>> {\n +area(): double\n}")

	shape, ok := d.Entity("Shape")
	require.True(t, ok)
	assert.Equal(t, []string{"abstract", "Entity", "Persistent"}, shape.Stereotypes)
	assert.True(t, shape.HasStereotype("Entity"))
	assert.Equal(t, []string{"+area(): double"}, shape.Methods)
}

func TestParseVisibilityMarkers(t *testing.T) {
	d := Parse("class Account {\n -balance: double\n #owner: String\n +deposit(amount: double)\n --\n}")

	acc, _ := d.Entity("Account")
	assert.Equal(t, []string{"-balance: double", "#owner: String"}, acc.Attributes)
	assert.Equal(t, []string{"+deposit(amount: double)"}, acc.Methods)
}

func TestParseRelationships(t *testing.T) {
	tests := []struct {
		name string
		line string
		want models.Relationship
	}{
		{
			name: "inheritance",
			line: "Dog --|> Animal",
			want: models.Relationship{Source: "Dog", Target: "Animal", Kind: models.Inheritance},
		},
		{
			name: "inheritance pointing left is normalized",
			line: "Animal <|-- Dog",
			want: models.Relationship{Source: "Dog", Target: "Animal", Kind: models.Inheritance},
		},
		{
			name: "composition",
			line: "Car *-- Engine",
			want: models.Relationship{Source: "Car", Target: "Engine", Kind: models.Composition},
		},
		{
			name: "composition pointing right is normalized",
			line: "Engine --* Car",
			want: models.Relationship{Source: "Car", Target: "Engine", Kind: models.Composition},
		},
		{
			name: "aggregation",
			line: "Team o-- Player",
			want: models.Relationship{Source: "Team", Target: "Player", Kind: models.Aggregation},
		},
		{
			name: "directed association",
			line: "Order --> Customer",
			want: models.Relationship{Source: "Order", Target: "Customer", Kind: models.Association},
		},
		{
			name: "cardinalities on both ends",
			line: `Student "1..*" -- "1..*" Course`,
			want: models.Relationship{
				Source: "Student", Target: "Course", Kind: models.Association,
				SourceCardinality: "1..*", TargetCardinality: "1..*",
			},
		},
		{
			name: "quoted label",
			line: `Library "1" *-- "many" Book : "contains"`,
			want: models.Relationship{
				Source: "Library", Target: "Book", Kind: models.Composition,
				SourceCardinality: "1", TargetCardinality: "many", Label: "contains",
			},
		},
		{
			name: "bare label",
			line: "Person -- Address : lives at",
			want: models.Relationship{Source: "Person", Target: "Address", Kind: models.Association, Label: "lives at"},
		},
		{
			name: "unmatched target falls back to first token",
			line: `A -- "x" "y"`,
			want: models.Relationship{Source: "A", Target: `"x"`, Kind: models.Association},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Parse(tt.line)
			require.Len(t, d.Relationships, 1)
			assert.Equal(t, tt.want, d.Relationships[0])
		})
	}
}

func TestRelationshipSymbolPrecedence(t *testing.T) {
	d := Parse("Dog <|-- Puppy\nCar *-- Wheel\nA -- B")
	require.Len(t, d.Relationships, 3)
	assert.Equal(t, models.Inheritance, d.Relationships[0].Kind)
	assert.Equal(t, models.Composition, d.Relationships[1].Kind)
	assert.Equal(t, models.Association, d.Relationships[2].Kind)
}

func TestParseUnparsedLines(t *testing.T) {
	src := "@startuml\nhide empty members\nclass A {\n  name: String\n}\nA --|> B --|> C\n' comment\n@enduml"
	d := Parse(src)

	require.Len(t, d.Unparsed, 3)
	assert.Equal(t, models.UnparsedLine{Number: 2, Text: "hide empty members"}, d.Unparsed[0])
	assert.Equal(t, 4, d.Unparsed[1].Number)
	assert.Equal(t, 6, d.Unparsed[2].Number)
	assert.Empty(t, d.Relationships)
}

func TestParseClassWithoutBlock(t *testing.T) {
	d := Parse("class A\nclass B {}\nA --|> B")

	assert.Equal(t, 2, d.EntityCount())
	require.Len(t, d.Relationships, 1)
	assert.Equal(t, "A", d.Relationships[0].Source)
}

func TestParseBlockLayouts(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		wantAttrs   []string
		wantMethods []string
	}{
		{
			name:        "brace on declaration line",
			src:         "class Foo {\n  +x: int\n  +run()\n}",
			wantAttrs:   []string{"+x: int"},
			wantMethods: []string{"+run()"},
		},
		{
			name:        "brace on next line",
			src:         "@startuml\nclass Foo\n{\n  +x: int\n  +run()\n}\n@enduml\n",
			wantAttrs:   []string{"+x: int"},
			wantMethods: []string{"+run()"},
		},
		{
			name:        "members without braces",
			src:         "class Foo\n+x: int",
			wantAttrs:   []string{"+x: int"},
			wantMethods: []string{},
		},
		{
			name:        "empty block closes declaration",
			src:         "class Foo {}\n+x: int",
			wantAttrs:   []string{},
			wantMethods: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Parse(tt.src)

			foo, ok := d.Entity("Foo")
			require.True(t, ok)
			assert.Equal(t, tt.wantAttrs, foo.Attributes)
			assert.Equal(t, tt.wantMethods, foo.Methods)
		})
	}
}

func TestParseRelationshipAfterOpenDeclaration(t *testing.T) {
	d := Parse("class A\n+x: int\nA --|> B")

	a, _ := d.Entity("A")
	assert.Equal(t, []string{"+x: int"}, a.Attributes)
	require.Len(t, d.Relationships, 1)
	assert.Equal(t, "B", d.Relationships[0].Target)
	assert.Empty(t, d.Unparsed)
}

func TestParseRejectsNamelessClass(t *testing.T) {
	d := Parse("class {\n+x: int\n}\nclass <<Tag>>")

	assert.Equal(t, 0, d.EntityCount())
	require.Len(t, d.Unparsed, 3)
	assert.Equal(t, models.UnparsedLine{Number: 1, Text: "class {"}, d.Unparsed[0])
	assert.Equal(t, 2, d.Unparsed[1].Number)
	assert.Equal(t, models.UnparsedLine{Number: 4, Text: "class <<Tag>>"}, d.Unparsed[2])
}

func TestParseStrict(t *testing.T) {
	t.Run("clean diagram", func(t *testing.T) {
		d, err := ParseStrict(sampleDiagram)
		require.NoError(t, err)
		assert.Equal(t, 3, d.EntityCount())
	})

	t.Run("empty diagram", func(t *testing.T) {
		_, err := ParseStrict("@startuml\n@enduml")
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("unparsed lines", func(t *testing.T) {
		_, err := ParseStrict("class A {\n}\nnot a relationship")
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Len(t, perr.Lines, 1)
		assert.Contains(t, perr.Error(), "line 3")
	})
}

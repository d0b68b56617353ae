package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/raphaelgruber/umlfca/internal/models"
)

// Runner executes a Cypher query and returns the buffered result.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Neo4jExecutor runs queries through the official driver.
type Neo4jExecutor struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jExecutor creates a driver for uri. An empty database selects the server default.
func NewNeo4jExecutor(uri, username, password, database string) (*Neo4jExecutor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Neo4jExecutor{driver: driver, database: database}, nil
}

// Verify checks connectivity.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	return e.driver.VerifyConnectivity(ctx)
}

func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if e.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(e.database))
	}
	result, err := neo4j.ExecuteQuery(ctx, e.driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return nil, fmt.Errorf("execute neo4j query: %w", err)
	}
	return result, nil
}

// Close releases the driver.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

const (
	mergeClassesQuery = `UNWIND $classes AS c
MERGE (n:UMLClass {name: c.name})
SET n.attributes = c.attributes, n.methods = c.methods, n.stereotypes = c.stereotypes, n.run_id = $run_id`

	mergeFeaturesQuery = `UNWIND $features AS f
MATCH (c:UMLClass {name: f.class})
MERGE (x:Feature {value: f.value})
MERGE (c)-[r:HAS_FEATURE]->(x)
SET r.kind = f.kind, r.run_id = $run_id`

	mergeRelationsQuery = `UNWIND $relations AS r
MERGE (a:UMLClass {name: r.source})
MERGE (b:UMLClass {name: r.target})
MERGE (a)-[e:RELATES_TO {kind: r.kind}]->(b)
SET e.cardinality_source = r.cardinality_source, e.cardinality_target = r.cardinality_target, e.label = r.label, e.run_id = $run_id`

	mergeAbstractionsQuery = `UNWIND $abstractions AS a
MERGE (n:Abstraction {name: a.name})
SET n.intent = a.intent, n.confidence = a.confidence, n.run_id = $run_id
WITH n, a
UNWIND a.extent AS child
MERGE (c:UMLClass {name: child})
MERGE (c)-[s:SPECIALIZES]->(n)
SET s.run_id = $run_id`
)

// Neo4jSink mirrors a knowledge graph and its synthesized abstractions into Neo4j.
type Neo4jSink struct {
	runner Runner
	logger *slog.Logger
}

// NewNeo4jSink creates a sink writing through runner.
func NewNeo4jSink(runner Runner, logger *slog.Logger) *Neo4jSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Neo4jSink{runner: runner, logger: logger}
}

// PersistGraph merges class nodes, shared feature nodes and relationship edges.
func (s *Neo4jSink) PersistGraph(ctx context.Context, g *Graph, runID string) error {
	var classes, features, relations []any
	for _, n := range g.Nodes() {
		switch n.Type {
		case NodeClass:
			classes = append(classes, map[string]any{
				"name":        n.ID,
				"attributes":  nonNil(n.Attributes),
				"methods":     nonNil(n.Methods),
				"stereotypes": nonNil(n.Stereotypes),
			})
		case NodeAttribute, NodeMethod:
			features = append(features, map[string]any{
				"class": n.ParentClass,
				"value": n.Value,
				"kind":  n.Type,
			})
		}
	}
	for _, e := range g.Edges() {
		if e.Relation == RelHasAttribute || e.Relation == RelHasMethod {
			continue
		}
		relations = append(relations, map[string]any{
			"source":             e.Source,
			"target":             e.Target,
			"kind":               e.Relation,
			"cardinality_source": e.SourceCardinality,
			"cardinality_target": e.TargetCardinality,
			"label":              e.Label,
		})
	}

	batches := []struct {
		name  string
		query string
		key   string
		rows  []any
	}{
		{"classes", mergeClassesQuery, "classes", classes},
		{"features", mergeFeaturesQuery, "features", features},
		{"relations", mergeRelationsQuery, "relations", relations},
	}
	for _, b := range batches {
		if len(b.rows) == 0 {
			continue
		}
		if _, err := s.runner.Run(ctx, b.query, map[string]any{b.key: b.rows, "run_id": runID}); err != nil {
			return fmt.Errorf("persist %s: %w", b.name, err)
		}
		s.logger.Debug("persisted graph batch", "batch", b.name, "rows", len(b.rows))
	}
	return nil
}

// PersistAbstractions merges abstraction nodes and SPECIALIZES edges from their members.
func (s *Neo4jSink) PersistAbstractions(ctx context.Context, cands []*models.Candidate, runID string) error {
	if len(cands) == 0 {
		return nil
	}
	rows := make([]any, 0, len(cands))
	for _, c := range cands {
		rows = append(rows, map[string]any{
			"name":       c.Name,
			"extent":     nonNil(c.Extent),
			"intent":     nonNil(c.Intent),
			"confidence": c.Confidence,
		})
	}
	if _, err := s.runner.Run(ctx, mergeAbstractionsQuery, map[string]any{"abstractions": rows, "run_id": runID}); err != nil {
		return fmt.Errorf("persist abstractions: %w", err)
	}
	return nil
}

// Package service orchestrates a diagram enhancement run.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/umlfca/internal/config"
	"github.com/raphaelgruber/umlfca/internal/evaluator"
	"github.com/raphaelgruber/umlfca/internal/fca"
	"github.com/raphaelgruber/umlfca/internal/generator"
	"github.com/raphaelgruber/umlfca/internal/graph"
	"github.com/raphaelgruber/umlfca/internal/metrics"
	"github.com/raphaelgruber/umlfca/internal/models"
	"github.com/raphaelgruber/umlfca/internal/naming"
	"github.com/raphaelgruber/umlfca/internal/parser"
	"github.com/raphaelgruber/umlfca/internal/synth"
)

// TimestampLayout stamps every file a run writes.
const TimestampLayout = "20060102_150405"

// EnhanceService runs the enhancement pipeline. Each run is sequential.
type EnhanceService struct {
	cfg      config.Config
	analyzer *fca.Analyzer
	namer    *naming.Service
	sink     *graph.Neo4jSink
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewEnhanceService creates a service. sink may be nil.
func NewEnhanceService(cfg config.Config, analyzer *fca.Analyzer, namer *naming.Service, sink *graph.Neo4jSink, logger *slog.Logger) *EnhanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnhanceService{
		cfg:      cfg,
		analyzer: analyzer,
		namer:    namer,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// RunResult is the run summary written to results_<timestamp>.json.
type RunResult struct {
	Timestamp   string           `json:"timestamp"`
	RunID       string           `json:"run_id"`
	InputPath   string           `json:"input_path"`
	OutputPath  string           `json:"output_path"`
	Steps       Steps            `json:"steps"`
	Timings     metrics.Snapshot `json:"timings"`
	ResultsPath string           `json:"-"`

	Abstractions []*models.Candidate `json:"-"`
}

// Steps holds per-step counts and output files.
type Steps struct {
	Parsing         ParsingStep         `json:"parsing"`
	KnowledgeGraph  KnowledgeGraphStep  `json:"knowledge_graph"`
	FCAExport       FCAExportStep       `json:"fca_export"`
	FCAAnalysis     FCAAnalysisStep     `json:"fca_analysis"`
	AbstractClasses AbstractClassesStep `json:"abstract_classes"`
	Generation      OutputStep          `json:"generation"`
	Evaluation      EvaluationStep      `json:"evaluation"`
	Report          OutputStep          `json:"report"`
}

type ParsingStep struct {
	ClassesCount       int `json:"classes_count"`
	RelationshipsCount int `json:"relationships_count"`
	UnparsedLines      int `json:"unparsed_lines"`
}

type KnowledgeGraphStep struct {
	NodesCount int    `json:"nodes_count"`
	EdgesCount int    `json:"edges_count"`
	OutputFile string `json:"output_file"`
	Persisted  bool   `json:"persisted"`
}

type FCAExportStep struct {
	ContextFile string `json:"context_file"`
}

type FCAAnalysisStep struct {
	TotalConcepts    int        `json:"total_concepts"`
	RelevantConcepts int        `json:"relevant_concepts"`
	Source           fca.Source `json:"source"`
	OutputFile       string     `json:"output_file"`
}

type AbstractClassesStep struct {
	Count      int    `json:"count"`
	OutputFile string `json:"output_file"`
}

type OutputStep struct {
	OutputFile string `json:"output_file"`
}

type EvaluationStep struct {
	EvaluationCSV       string `json:"evaluation_csv"`
	EvaluationSimpleCSV string `json:"evaluation_simple_csv"`
	ConceptsEvaluated   int    `json:"concepts_evaluated"`
}

// Run enhances the diagram at inputPath. An empty outputPath writes
// <output-dir>/<stem>_enhanced_<timestamp>.puml. Only IO failures are
// returned; the lattice tool and the naming service degrade to fallbacks.
func (s *EnhanceService) Run(ctx context.Context, inputPath, outputPath string) (*RunResult, error) {
	collector := metrics.NewCollector()
	ts := s.now().Format(TimestampLayout)

	if outputPath == "" {
		stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		outputPath = filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%s_enhanced_%s.puml", stem, ts))
	}

	res := &RunResult{
		Timestamp:  ts,
		RunID:      s.newID(),
		InputPath:  inputPath,
		OutputPath: outputPath,
	}
	logger := s.logger.With("run_id", res.RunID)
	logger.Info("starting enhancement run", "input", inputPath, "output", outputPath)

	for _, dir := range []string{s.cfg.OutputDir, s.cfg.ReportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	// Parse
	done := collector.Track(metrics.StageParse)
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".puml" && ext != ".plantuml" {
		logger.Warn("input does not look like a PlantUML file", "extension", ext)
	}
	diagram := parser.Parse(string(content))
	done()
	for _, u := range diagram.Unparsed {
		logger.Debug("skipped unrecognized line", "line", u.Number, "text", u.Text)
	}
	res.Steps.Parsing = ParsingStep{
		ClassesCount:       diagram.EntityCount(),
		RelationshipsCount: len(diagram.Relationships),
		UnparsedLines:      len(diagram.Unparsed),
	}
	logger.Info("parsed diagram", "classes", diagram.EntityCount(), "relationships", len(diagram.Relationships), "unparsed", len(diagram.Unparsed))

	// Knowledge graph
	done = collector.Track(metrics.StageGraph)
	kg := graph.Build(diagram)
	kgPath := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("knowledge_graph_%s.json", ts))
	if err := kg.Export(kgPath); err != nil {
		return nil, err
	}
	res.Steps.KnowledgeGraph = KnowledgeGraphStep{NodesCount: kg.NodeCount(), EdgesCount: kg.EdgeCount(), OutputFile: kgPath}
	if s.sink != nil {
		if err := s.sink.PersistGraph(ctx, kg, res.RunID); err != nil {
			logger.Warn("knowledge graph not persisted", "error", err)
		} else {
			res.Steps.KnowledgeGraph.Persisted = true
		}
	}
	done()
	logger.Info("built knowledge graph", "nodes", kg.NodeCount(), "edges", kg.EdgeCount(), "file", kgPath)

	// Formal context
	done = collector.Track(metrics.StageContext)
	contextPath := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("fca_context_%s.csv", ts))
	if err := fca.BuildContext(diagram).ExportCSV(contextPath); err != nil {
		return nil, err
	}
	res.Steps.FCAExport = FCAExportStep{ContextFile: contextPath}
	done()

	// Concept extraction, scoring and filtering
	done = collector.Track(metrics.StageLattice)
	analysis, err := s.analyzer.Analyze(ctx, contextPath, filepath.Join(s.cfg.OutputDir, "fca_"+ts))
	if err != nil {
		return nil, err
	}
	concepts := analysis.Concepts
	fca.Score(concepts)
	conceptsPath := filepath.Join(s.cfg.ReportsDir, fmt.Sprintf("concepts_%s.json", ts))
	if err := fca.ExportConcepts(conceptsPath, concepts); err != nil {
		return nil, err
	}
	relevant := fca.Filter(concepts, s.cfg.MinRelevance, s.cfg.MinExtentSize)
	res.Steps.FCAAnalysis = FCAAnalysisStep{
		TotalConcepts:    len(concepts),
		RelevantConcepts: len(relevant),
		Source:           analysis.Source,
		OutputFile:       conceptsPath,
	}
	done()
	logger.Info("extracted formal concepts", "total", len(concepts), "relevant", len(relevant), "source", analysis.Source)

	// Abstractions
	done = collector.Track(metrics.StageSynthesize)
	cands := synth.NewCandidates(relevant)
	added := synth.ExpandExtents(cands, diagram, logger)
	done()
	logger.Info("created abstraction candidates", "count", len(cands), "expanded_members", added)

	done = collector.Track(metrics.StageNaming)
	s.namer.NameAll(ctx, cands)
	cands = synth.MergeByName(cands)
	done()

	abstractPath := filepath.Join(s.cfg.ReportsDir, fmt.Sprintf("abstract_classes_%s.json", ts))
	if err := naming.ExportNamed(abstractPath, cands); err != nil {
		return nil, err
	}
	res.Steps.AbstractClasses = AbstractClassesStep{Count: len(cands), OutputFile: abstractPath}
	res.Abstractions = cands
	if s.sink != nil && res.Steps.KnowledgeGraph.Persisted {
		if err := s.sink.PersistAbstractions(ctx, cands, res.RunID); err != nil {
			logger.Warn("abstractions not persisted", "error", err)
		}
	}

	// Enhanced diagram
	done = collector.Track(metrics.StageGenerate)
	if err := generator.WriteFile(outputPath, diagram, cands); err != nil {
		return nil, err
	}
	res.Steps.Generation = OutputStep{OutputFile: outputPath}
	done()
	logger.Info("wrote enhanced diagram", "file", outputPath, "abstractions", len(cands))

	// Evaluation
	done = collector.Track(metrics.StageEvaluate)
	evals := evaluator.EvaluateAll(cands, relevant, ts)
	evalPath := filepath.Join(s.cfg.ReportsDir, fmt.Sprintf("evaluation_%s.csv", ts))
	simplePath := filepath.Join(s.cfg.ReportsDir, fmt.Sprintf("evaluation_simple_%s.csv", ts))
	if err := evaluator.ExportTemplateCSV(evalPath, evals); err != nil {
		return nil, err
	}
	if err := evaluator.ExportSimpleCSV(simplePath, evals); err != nil {
		return nil, err
	}
	res.Steps.Evaluation = EvaluationStep{
		EvaluationCSV:       evalPath,
		EvaluationSimpleCSV: simplePath,
		ConceptsEvaluated:   len(evals),
	}
	done()

	// Report
	done = collector.Track(metrics.StageReport)
	reportPath := filepath.Join(s.cfg.ReportsDir, fmt.Sprintf("report_%s.md", ts))
	err = generator.WriteReport(reportPath, generator.ReportInput{
		InputPath:     inputPath,
		OutputPath:    outputPath,
		Classes:       res.Steps.Parsing.ClassesCount,
		Relationships: res.Steps.Parsing.RelationshipsCount,
		Concepts:      len(concepts),
		Relevant:      len(relevant),
		ConceptSource: string(analysis.Source),
		Abstractions:  cands,
	})
	if err != nil {
		return nil, err
	}
	res.Steps.Report = OutputStep{OutputFile: reportPath}
	done()

	res.Timings = collector.Snapshot()
	res.ResultsPath = filepath.Join(s.cfg.ReportsDir, fmt.Sprintf("results_%s.json", ts))
	if err := writeResults(res.ResultsPath, res); err != nil {
		return nil, err
	}
	logger.Info("enhancement run completed", "results", res.ResultsPath)

	return res, nil
}

func writeResults(path string, res *RunResult) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/raphaelgruber/umlfca/internal/config"
	"github.com/raphaelgruber/umlfca/internal/fca"
	"github.com/raphaelgruber/umlfca/internal/graph"
	"github.com/raphaelgruber/umlfca/internal/naming"
	"github.com/raphaelgruber/umlfca/internal/service"
	"github.com/spf13/cobra"
)

var (
	enhanceInput         string
	enhanceOutput        string
	enhanceOutputDir     string
	enhanceLogsDir       string
	enhanceReportsDir    string
	enhanceProvider      string
	enhanceAPIKey        string
	enhanceFCA4JPath     string
	enhanceMinRelevance  float64
	enhanceMinExtentSize int
)

func newEnhanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enhance",
		Short: "Add FCA-derived abstract classes to a diagram",
		Long: `Run the full enhancement pipeline on a PlantUML class diagram.

The lattice tool is optional: without it one concept per feature is derived
locally. Without credentials for the naming provider, abstractions get
rule-based names.

Examples:
  umlfca enhance -i model.puml
  umlfca enhance -i model.puml -o model_enhanced.puml
  umlfca enhance -i model.puml --provider anthropic --api-key sk-...
  umlfca enhance -i model.puml --min-relevance 60 --min-extent-size 3`,
		Args: cobra.NoArgs,
		RunE: runEnhance,
	}

	cmd.Flags().StringVarP(&enhanceInput, "input", "i", "", "input PlantUML file (required)")
	cmd.Flags().StringVarP(&enhanceOutput, "output", "o", "", "enhanced diagram path (default <output-dir>/<name>_enhanced_<timestamp>.puml)")
	cmd.Flags().StringVar(&enhanceOutputDir, "output-dir", "", "directory for generated diagrams and intermediate files")
	cmd.Flags().StringVar(&enhanceLogsDir, "logs-dir", "", "directory for run logs")
	cmd.Flags().StringVar(&enhanceReportsDir, "reports-dir", "", "directory for reports, concepts and evaluations")
	cmd.Flags().StringVarP(&enhanceProvider, "provider", "p", "", "naming provider (openai, anthropic)")
	cmd.Flags().StringVarP(&enhanceAPIKey, "api-key", "k", "", "API key for the naming provider")
	cmd.Flags().StringVar(&enhanceFCA4JPath, "fca4j-path", "", "path to the FCA4J command-line jar")
	cmd.Flags().Float64Var(&enhanceMinRelevance, "min-relevance", 0, "minimum concept relevance score (0-100)")
	cmd.Flags().IntVar(&enhanceMinExtentSize, "min-extent-size", 0, "minimum number of classes per concept")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// applyEnhanceFlags overlays flags the user set explicitly onto c.
func applyEnhanceFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		c.OutputDir = enhanceOutputDir
	}
	if flags.Changed("logs-dir") {
		c.LogsDir = enhanceLogsDir
	}
	if flags.Changed("reports-dir") {
		c.ReportsDir = enhanceReportsDir
	}
	if flags.Changed("provider") {
		c.LLMProvider = config.Provider(strings.ToLower(enhanceProvider))
	}
	if flags.Changed("api-key") {
		c.SetAPIKey(enhanceAPIKey)
	}
	if flags.Changed("fca4j-path") {
		c.FCA4JPath = enhanceFCA4JPath
	}
	if flags.Changed("min-relevance") {
		c.MinRelevance = enhanceMinRelevance
	}
	if flags.Changed("min-extent-size") {
		c.MinExtentSize = enhanceMinExtentSize
	}
}

func runEnhance(cmd *cobra.Command, args []string) error {
	applyEnhanceFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog := setupLogging(cfg, time.Now())
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close log file: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := newPrinter(cmd.OutOrStdout())

	sink, closeSink := openSink(ctx, cfg, logger, out)
	defer closeSink()

	analyzer := fca.NewAnalyzer(fca.AnalyzerConfig{
		ToolPath:      cfg.FCA4JPath,
		JavaPath:      cfg.JavaPath,
		Timeout:       cfg.FCATimeout,
		MinExtentSize: cfg.MinExtentSize,
	}, logger)
	svc := service.NewEnhanceService(cfg, analyzer, naming.NewService(cfg, logger), sink, logger)

	out.status("Enhancing %s", enhanceInput)
	res, err := svc.Run(ctx, enhanceInput, enhanceOutput)
	if err != nil {
		return err
	}

	printSummary(out, res)
	return nil
}

// openSink connects the optional Neo4j sink. Connection problems are reported
// and the run continues without persistence.
func openSink(ctx context.Context, c config.Config, logger *slog.Logger, out *printer) (*graph.Neo4jSink, func()) {
	noop := func() {}
	if c.Neo4jURI == "" {
		return nil, noop
	}

	exec, err := graph.NewNeo4jExecutor(c.Neo4jURI, c.Neo4jUser, c.Neo4jPass, c.Neo4jDatabase)
	if err != nil {
		logger.Warn("neo4j sink disabled", "error", err)
		out.warn("Knowledge graph will not be persisted: %v", err)
		return nil, noop
	}
	closeExec := func() {
		if err := exec.Close(context.Background()); err != nil {
			logger.Warn("failed to close neo4j driver", "error", err)
		}
	}
	if err := exec.Verify(ctx); err != nil {
		logger.Warn("neo4j sink disabled", "uri", c.Neo4jURI, "error", err)
		out.warn("Knowledge graph will not be persisted: %v", err)
		closeExec()
		return nil, noop
	}

	return graph.NewNeo4jSink(exec, logger), closeExec
}

func printSummary(out *printer, res *service.RunResult) {
	steps := res.Steps

	if steps.FCAAnalysis.Source == fca.SourceFallback {
		out.warn("Lattice tool unavailable, used one concept per feature")
	}
	fallbackNamed := 0
	for _, c := range res.Abstractions {
		if c.Confidence < naming.LLMConfidence {
			fallbackNamed++
		}
	}
	if fallbackNamed > 0 {
		out.warn("%d abstraction(s) named by rule-based fallback", fallbackNamed)
	}

	out.success("Enhanced diagram: %s", steps.Generation.OutputFile)
	out.line("")
	out.line("  Classes:           %d", steps.Parsing.ClassesCount)
	out.line("  Relationships:     %d", steps.Parsing.RelationshipsCount)
	if steps.Parsing.UnparsedLines > 0 {
		out.line("  Skipped lines:     %d", steps.Parsing.UnparsedLines)
	}
	out.line("  Graph:             %d nodes, %d edges", steps.KnowledgeGraph.NodesCount, steps.KnowledgeGraph.EdgesCount)
	out.line("  Concepts:          %d (%d relevant)", steps.FCAAnalysis.TotalConcepts, steps.FCAAnalysis.RelevantConcepts)
	out.line("  Abstract classes:  %d", steps.AbstractClasses.Count)
	for _, c := range res.Abstractions {
		out.line("    %s <- %s", c.Name, strings.Join(c.Extent, ", "))
	}
	out.line("")
	out.hint("Report:  %s", steps.Report.OutputFile)
	out.hint("Results: %s", res.ResultsPath)
	if verbose {
		out.hint("Run ID:  %s", res.RunID)
	}
}

package fca

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphaelgruber/umlfca/internal/models"
)

// ErrToolUnavailable covers every way the external lattice tool can fail:
// missing jar or runtime, non-zero exit, timeout, unreadable output.
var ErrToolUnavailable = errors.New("lattice tool unavailable")

// DefaultTimeout bounds one lattice tool run.
const DefaultTimeout = 300 * time.Second

// Source tells where a concept batch came from.
type Source string

const (
	SourceExternal Source = "external"
	SourceFallback Source = "fallback"
)

// CommandRunner runs a command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// AnalyzerConfig configures the external lattice tool.
type AnalyzerConfig struct {
	ToolPath      string        // lattice jar
	JavaPath      string        // java executable
	Timeout       time.Duration // zero means DefaultTimeout
	MinExtentSize int           // floor applied to concepts read from the tool
}

// Analyzer extracts formal concepts with the external tool, falling back to
// one concept per feature when the tool cannot be used.
type Analyzer struct {
	cfg    AnalyzerConfig
	run    CommandRunner
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer that shells out with os/exec.
func NewAnalyzer(cfg AnalyzerConfig, logger *slog.Logger) *Analyzer {
	if cfg.JavaPath == "" {
		cfg.JavaPath = "java"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, run: execCommand, logger: logger}
}

// WithRunner replaces the command runner (used by tests).
func (a *Analyzer) WithRunner(run CommandRunner) *Analyzer {
	a.run = run
	return a
}

// Result is one extraction batch.
type Result struct {
	Concepts []models.Concept
	Source   Source
}

// Analyze extracts concepts from the context table at contextPath, writing
// tool output under outDir. Tool failures are logged and never returned; only
// errors reading the context itself are.
func (a *Analyzer) Analyze(ctx context.Context, contextPath, outDir string) (*Result, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create lattice directory: %w", err)
	}

	concepts, err := a.runTool(ctx, contextPath, filepath.Join(outDir, "concepts.xml"))
	if err == nil {
		a.logger.Info("lattice computed", "tool", a.cfg.ToolPath, "concepts", len(concepts))
		return &Result{Concepts: concepts, Source: SourceExternal}, nil
	}

	a.logger.Warn("lattice tool unavailable, using fallback extraction", "tool", a.cfg.ToolPath, "error", err)
	concepts, err = FallbackFile(contextPath)
	if err != nil {
		return nil, err
	}
	return &Result{Concepts: concepts, Source: SourceFallback}, nil
}

func (a *Analyzer) runTool(ctx context.Context, contextPath, outFile string) ([]models.Concept, error) {
	if _, err := os.Stat(a.cfg.ToolPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, err := a.run(ctx, a.cfg.JavaPath,
		"-jar", a.cfg.ToolPath,
		"lattice", contextPath, outFile,
		"-i", "CSV", "-o", "XML", "-s", "COMMA",
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out after %s", ErrToolUnavailable, a.cfg.Timeout)
		}
		return nil, fmt.Errorf("%w: %v: %s", ErrToolUnavailable, err, strings.TrimSpace(string(out)))
	}
	a.logger.Debug("lattice tool finished", "duration_ms", time.Since(start).Milliseconds())

	f, err := os.Open(outFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	defer f.Close()

	concepts, err := ReadLatticeXML(f, a.cfg.MinExtentSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	return concepts, nil
}

// Fallback derives one concept per feature column: the objects marked for
// that feature, sharing that single feature. Empty columns yield nothing.
func Fallback(c *Context) []models.Concept {
	var concepts []models.Concept
	for _, f := range c.Features {
		extent := c.Extent(f)
		if len(extent) == 0 {
			continue
		}
		concepts = append(concepts, models.Concept{Extent: extent, Intent: []string{f}})
	}
	return concepts
}

// FallbackFile runs Fallback on a context table file.
func FallbackFile(contextPath string) ([]models.Concept, error) {
	f, err := os.Open(contextPath)
	if err != nil {
		return nil, fmt.Errorf("open context: %w", err)
	}
	defer f.Close()

	c, err := ReadContextCSV(f)
	if err != nil {
		return nil, err
	}
	return Fallback(c), nil
}

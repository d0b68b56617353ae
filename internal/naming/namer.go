// Package naming assigns class names to abstraction candidates, through a
// text-generation provider when one is configured and by deterministic
// rules otherwise.
package naming

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/umlfca/internal/config"
	"github.com/raphaelgruber/umlfca/internal/models"
)

// Namer proposes a name for a candidate.
type Namer interface {
	Suggest(ctx context.Context, c *models.Candidate) (string, error)
	// Confidence is recorded with every name this namer produces.
	Confidence() float64
}

// Service names candidates with a primary namer and degrades to
// FallbackNamer per candidate.
type Service struct {
	primary  Namer
	fallback FallbackNamer
	logger   *slog.Logger
}

// NewService builds the provider namer from cfg. Missing credentials or an
// unknown provider leave the service in fallback-only mode.
func NewService(cfg config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	primary, err := NewNamer(cfg)
	if err != nil {
		logger.Warn("naming service unavailable, using rule-based names", "provider", cfg.LLMProvider, "error", err)
		return &Service{logger: logger}
	}
	logger.Debug("naming service ready", "provider", cfg.LLMProvider, "model", cfg.Model())
	return &Service{primary: primary, logger: logger}
}

// NewServiceWithNamer uses primary directly; nil means fallback only.
func NewServiceWithNamer(primary Namer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{primary: primary, logger: logger}
}

// Name sets c.Name and c.Confidence.
func (s *Service) Name(ctx context.Context, c *models.Candidate) {
	if s.primary != nil {
		name, err := s.primary.Suggest(ctx, c)
		if err == nil {
			c.Name = name
			c.Confidence = s.primary.Confidence()
			return
		}
		s.logger.Warn("naming failed, using rule-based name", "candidate", c.Extent, "error", err)
	}

	c.Name = FallbackName(c.Extent, c.Intent)
	c.Confidence = s.fallback.Confidence()
}

// NameAll names candidates one after another.
func (s *Service) NameAll(ctx context.Context, cands []*models.Candidate) {
	for _, c := range cands {
		s.Name(ctx, c)
		s.logger.Info("named abstraction", "name", c.Name, "extent", c.Extent, "confidence", c.Confidence)
	}
}

// ExportNamed writes the named candidates as an indented JSON array.
func ExportNamed(path string, cands []*models.Candidate) error {
	if cands == nil {
		cands = []*models.Candidate{}
	}
	data, err := json.MarshalIndent(cands, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal abstractions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create abstractions directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write abstractions: %w", err)
	}
	return nil
}

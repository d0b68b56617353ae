// Package metrics collects per-stage timings of an enhancement run.
package metrics

import (
	"math"
	"sync"
	"time"
)

// Stage names for the collector, in pipeline order.
const (
	StageParse      = "parse"
	StageGraph      = "knowledge_graph"
	StageContext    = "fca_export"
	StageLattice    = "fca_analysis"
	StageSynthesize = "synthesize"
	StageNaming     = "naming"
	StageGenerate   = "generation"
	StageEvaluate   = "evaluation"
	StageReport     = "report"
)

// StageMetrics holds aggregated timings for one stage.
type StageMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// StageSnapshot provides computed stats from raw metrics.
type StageSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_ms"`
	AvgTimeMs   float64 `json:"avg_ms"`
	MinTimeMs   int64   `json:"min_ms"`
	MaxTimeMs   int64   `json:"max_ms"`
}

// Snapshot represents the run's timings at a point in time.
type Snapshot struct {
	ElapsedSeconds float64                   `json:"elapsed_seconds"`
	Stages         map[string]*StageSnapshot `json:"stages"`
}

// Collector aggregates in-memory timings.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	stages    map[string]*StageMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		stages:    make(map[string]*StageMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for a stage.
// Caller must hold write lock.
func (c *Collector) getOrCreate(stage string) *StageMetrics {
	m, ok := c.stages[stage]
	if !ok {
		m = &StageMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.stages[stage] = m
	}
	return m
}

// RecordTiming records one execution of a stage.
func (c *Collector) RecordTiming(stage string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(stage)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Track starts timing a stage; call the returned function when it ends.
func (c *Collector) Track(stage string) func() {
	start := time.Now()
	return func() { c.RecordTiming(stage, time.Since(start)) }
}

func snapshotStage(m *StageMetrics) *StageSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}
	return &StageSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of every recorded stage.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stages := make(map[string]*StageSnapshot, len(c.stages))
	for name, m := range c.stages {
		if snap := snapshotStage(m); snap != nil {
			stages[name] = snap
		}
	}
	return Snapshot{
		ElapsedSeconds: time.Since(c.startTime).Seconds(),
		Stages:         stages,
	}
}

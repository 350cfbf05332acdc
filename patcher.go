// patcher.go: At-most-once activation of integrations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// ActivationState is the lifecycle state of one integration's activation.
//
// A record starts Unpatched and leaves it exactly once. Patched and Failed
// are terminal for the life of the process.
type ActivationState int32

const (
	StateUnpatched ActivationState = iota
	StatePatching
	StatePatched
	StateFailed
)

func (s ActivationState) String() string {
	switch s {
	case StateUnpatched:
		return "unpatched"
	case StatePatching:
		return "patching"
	case StatePatched:
		return "patched"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state can no longer change.
func (s ActivationState) Terminal() bool {
	return s == StatePatched || s == StateFailed
}

// ActivationRecord tracks one descriptor's activation. mu serializes the
// transition out of Unpatched; state is readable without the lock.
type ActivationRecord struct {
	name string

	mu  sync.Mutex
	err error

	state      atomic.Int32
	version    atomic.Value // string
	startedAt  atomic.Int64
	finishedAt atomic.Int64
	duration   atomic.Int64
}

// ActivationStatus is a point-in-time view of an ActivationRecord.
type ActivationStatus struct {
	Name       string          `json:"name"`
	State      ActivationState `json:"state"`
	Version    string          `json:"version,omitempty"`
	Err        error           `json:"-"`
	StartedAt  time.Time       `json:"started_at,omitempty"`
	FinishedAt time.Time       `json:"finished_at,omitempty"`
	Duration   time.Duration   `json:"duration"`
}

func (r *ActivationRecord) status() ActivationStatus {
	st := ActivationStatus{
		Name:     r.name,
		State:    ActivationState(r.state.Load()),
		Duration: time.Duration(r.duration.Load()),
	}
	if v, ok := r.version.Load().(string); ok {
		st.Version = v
	}
	if ns := r.startedAt.Load(); ns != 0 {
		st.StartedAt = time.Unix(0, ns)
	}
	if ns := r.finishedAt.Load(); ns != 0 {
		st.FinishedAt = time.Unix(0, ns)
	}
	if st.State == StateFailed {
		r.mu.Lock()
		st.Err = r.err
		r.mu.Unlock()
	}
	return st
}

// PatcherConfig configures a Patcher.
type PatcherConfig struct {
	// Tracer is handed to activation routines
	Tracer Tracer
	// Logger defaults to DefaultLogger()
	Logger Logger
	// Metrics defaults to an in-memory collector
	Metrics MetricsCollector
}

// Patcher applies activation routines at most once per integration.
//
// Callers may invoke Apply for the same integration from any number of
// goroutines; exactly one routine runs and every caller observes the same
// terminal state. Records of different integrations never block each other.
type Patcher struct {
	tracer  Tracer
	logger  Logger
	metrics MetricsCollector

	mu      sync.Mutex
	records map[string]*ActivationRecord
}

// NewPatcher creates a Patcher.
func NewPatcher(config PatcherConfig) *Patcher {
	if config.Logger == nil {
		config.Logger = DefaultLogger()
	}
	if config.Metrics == nil {
		config.Metrics = NewDefaultMetricsCollector()
	}
	return &Patcher{
		tracer:  config.Tracer,
		logger:  config.Logger,
		metrics: config.Metrics,
		records: make(map[string]*ActivationRecord),
	}
}

func (p *Patcher) record(name string) *ActivationRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.records[name]
	if !ok {
		rec = &ActivationRecord{name: name}
		p.records[name] = rec
	}
	return rec
}

// Apply activates the candidate's integration unless it already left the
// Unpatched state. A previous failure is returned again without retrying.
func (p *Patcher) Apply(c Candidate) error {
	if c.Descriptor == nil {
		return NewInvalidDescriptorError("", "candidate has no descriptor")
	}
	name := c.Descriptor.Name
	rec := p.record(name)

	if ActivationState(rec.state.Load()) == StatePatched {
		return nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	switch ActivationState(rec.state.Load()) {
	case StatePatched:
		return nil
	case StateFailed:
		return rec.err
	}

	rec.state.Store(int32(StatePatching))
	rec.version.Store(c.Version)
	rec.startedAt.Store(timecache.CachedTimeNano())
	p.metrics.SetGauge(MetricActivationState, map[string]string{"integration": name}, float64(StatePatching))

	logger := p.logger.With("integration", name)
	logger.Debug("Activating integration", "version", c.Version, "constraint", c.Descriptor.ConstraintString())

	start := time.Now()
	err := callRecovering(func() error {
		return c.Descriptor.Activate(ActivationContext{
			Name:    name,
			Version: c.Version,
			Config:  c.Config,
			Tracer:  p.tracer,
			Logger:  logger,
		})
	})
	elapsed := time.Since(start)

	rec.duration.Store(int64(elapsed))
	rec.finishedAt.Store(timecache.CachedTimeNano())
	p.metrics.RecordHistogram(MetricActivationSeconds, map[string]string{"integration": name}, elapsed.Seconds())

	if err != nil {
		failure := NewActivationFailure(name, err).WithContext("version", c.Version)
		rec.err = failure
		rec.state.Store(int32(StateFailed))
		p.recordOutcome(name, StateFailed)
		logger.Warn("Integration activation failed", "error", err, "duration", elapsed)
		return failure
	}

	rec.state.Store(int32(StatePatched))
	p.recordOutcome(name, StatePatched)
	logger.Info("Integration activated", "version", c.Version, "duration", elapsed)
	return nil
}

func (p *Patcher) recordOutcome(name string, state ActivationState) {
	p.metrics.IncrementCounter(MetricActivationsTotal,
		map[string]string{"integration": name, "result": state.String()}, 1)
	p.metrics.SetGauge(MetricActivationState, map[string]string{"integration": name}, float64(state))
}

// ApplyAll applies candidates in order. A failing candidate does not stop
// the remaining ones; the report lists every outcome.
func (p *Patcher) ApplyAll(candidates []Candidate) ActivationReport {
	report := ActivationReport{Results: make([]ActivationResult, 0, len(candidates))}
	for _, c := range candidates {
		err := p.Apply(c)
		report.Results = append(report.Results, ActivationResult{
			Name:    c.Name(),
			Version: c.Version,
			State:   p.State(c.Name()),
			Err:     err,
		})
	}
	return report
}

// State returns the current state of name; unknown names are Unpatched.
func (p *Patcher) State(name string) ActivationState {
	p.mu.Lock()
	rec, ok := p.records[name]
	p.mu.Unlock()
	if !ok {
		return StateUnpatched
	}
	return ActivationState(rec.state.Load())
}

// Status returns a snapshot of name's record. The boolean is false when
// Apply was never called for name.
func (p *Patcher) Status(name string) (ActivationStatus, bool) {
	p.mu.Lock()
	rec, ok := p.records[name]
	p.mu.Unlock()
	if !ok {
		return ActivationStatus{Name: name, State: StateUnpatched}, false
	}
	return rec.status(), true
}

// Statuses returns snapshots of all records sorted by name.
func (p *Patcher) Statuses() []ActivationStatus {
	p.mu.Lock()
	recs := make([]*ActivationRecord, 0, len(p.records))
	for _, rec := range p.records {
		recs = append(recs, rec)
	}
	p.mu.Unlock()

	out := make([]ActivationStatus, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ActivationResult is the outcome of one Apply call within ApplyAll.
type ActivationResult struct {
	Name    string
	Version string
	State   ActivationState
	Err     error
}

// ActivationReport summarizes an ApplyAll pass.
type ActivationReport struct {
	Results []ActivationResult
}

// Failures returns the results that ended in an error.
func (r ActivationReport) Failures() []ActivationResult {
	var out []ActivationResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Patched returns the names that are patched after the pass.
func (r ActivationReport) Patched() []string {
	var out []string
	for _, res := range r.Results {
		if res.State == StatePatched {
			out = append(out, res.Name)
		}
	}
	return out
}

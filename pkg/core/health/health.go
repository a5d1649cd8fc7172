// ============================================================================
// TheCalcularoty - LC Calculator
// ============================================================================
//
// Package:     health
// Description: Health check registry shared by the HTTP and gRPC servers
// Author:      Nicolas5241
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package health

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status is the outcome of one check or of a whole report
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// rank orders statuses from best to worst; unknown counts as degraded
func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusUnhealthy:
		return 2
	default:
		return 1
	}
}

// DefaultCheckTimeout bounds a single check unless the registry says otherwise
const DefaultCheckTimeout = 5 * time.Second

// CheckResult is what a checker reports
type CheckResult struct {
	Name      string                 `json:"name"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Duration  time.Duration          `json:"duration"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Checker probes one component
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type namedCheck struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

func (c namedCheck) Name() string                          { return c.name }
func (c namedCheck) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// NewChecker names fn as a Checker
func NewChecker(name string, fn func(ctx context.Context) CheckResult) Checker {
	return namedCheck{name: name, fn: fn}
}

// Registry runs the registered checks of one server
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	service  string
	version  string
	timeout  time.Duration
	startAt  time.Time
}

// NewRegistry creates an empty registry for service
func NewRegistry(service, version string) *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		service:  service,
		version:  version,
		timeout:  DefaultCheckTimeout,
		startAt:  time.Now(),
	}
}

// SetCheckTimeout changes the per-check deadline. Zero or less disables it.
func (r *Registry) SetCheckTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = d
}

// Register adds checker, replacing one with the same name
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// RegisterFunc registers fn under name
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context) CheckResult) {
	r.Register(NewChecker(name, fn))
}

// Unregister removes the checker called name
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
}

// Names lists the registered checks in report order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs every check concurrently and folds them into one report.
// A check still running at the deadline is reported unhealthy.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	checkers := make([]Checker, 0, len(r.checkers))
	for _, c := range r.checkers {
		checkers = append(checkers, c)
	}
	timeout := r.timeout
	r.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			results[i] = run(ctx, c, timeout)
		}(i, c)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	status := StatusHealthy
	for _, res := range results {
		if res.Status.rank() > status.rank() {
			status = res.Status
		}
	}
	if status == StatusUnknown {
		status = StatusDegraded
	}

	return &Report{
		Service:   r.service,
		Version:   r.version,
		Status:    status,
		Uptime:    time.Since(r.startAt),
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// run executes c under timeout. The checker keeps running in the
// background if it ignores its context.
func run(ctx context.Context, c Checker, timeout time.Duration) CheckResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan CheckResult, 1)
	go func() { done <- c.Check(ctx) }()

	var res CheckResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("check did not finish: %v", ctx.Err()),
		}
	}
	if res.Name == "" {
		res.Name = c.Name()
	}
	if res.Status == "" {
		res.Status = StatusUnknown
	}
	res.Duration = time.Since(start)
	res.Timestamp = time.Now()
	return res
}

// Report is the folded result of all checks
type Report struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Uptime    time.Duration `json:"uptime"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// Healthy reports whether every check passed
func (r *Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// HTTPStatus is 503 for an unhealthy report and 200 otherwise; a degraded
// server still answers calculations.
func (r *Report) HTTPStatus() int {
	if r.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// String summarizes the report in one line
func (r *Report) String() string {
	failing := 0
	for _, c := range r.Checks {
		if c.Status != StatusHealthy {
			failing++
		}
	}
	return fmt.Sprintf("%s %s: %s (%d checks, %d failing, up %v)",
		r.Service, r.Version, r.Status, len(r.Checks), failing, r.Uptime.Round(time.Second))
}

// ProbeCheck reports unhealthy when probe returns an error. The engine
// self test is registered this way.
func ProbeCheck(name string, probe func(ctx context.Context) error) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		if err := probe(ctx); err != nil {
			return CheckResult{Name: name, Status: StatusUnhealthy, Message: err.Error()}
		}
		return CheckResult{Name: name, Status: StatusHealthy, Message: "probe passed"}
	})
}

// StatsCheck is always healthy and publishes the counters stats returns,
// for components such as the result cache that cannot fail on their own.
func StatsCheck(name string, stats func() map[string]interface{}) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		return CheckResult{Name: name, Status: StatusHealthy, Details: stats()}
	})
}

// AlwaysHealthy reports healthy while the process is able to answer
func AlwaysHealthy(name string) Checker {
	return NewChecker(name, func(ctx context.Context) CheckResult {
		return CheckResult{Name: name, Status: StatusHealthy, Message: "serving"}
	})
}

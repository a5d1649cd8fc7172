package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/google/uuid"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
)

// Outcome is the result of one job. Exactly one of Result and Error is set.
type Outcome struct {
	Index  int          `json:"index"`
	Name   string       `json:"name"`
	Result *calc.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
	Code   string       `json:"code,omitempty"`
	Err    error        `json:"-"`
}

// OK reports whether the job succeeded
func (o Outcome) OK() bool { return o.Err == nil }

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Defaults calc.Defaults
	// Workers bounds the number of jobs evaluated at once. Zero means
	// GOMAXPROCS.
	Workers int
	Logger  *mdwlog.Logger
}

// Runner evaluates jobs concurrently and reports outcomes in file order.
type Runner struct {
	calc     *calc.Orchestrator
	defaults calc.Defaults
	workers  int
	logger   *mdwlog.Logger
}

// NewRunner creates a runner over orchestrator
func NewRunner(orchestrator *calc.Orchestrator, cfg RunnerConfig) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = mdwlog.Discard()
	}
	return &Runner{
		calc:     orchestrator,
		defaults: cfg.Defaults,
		workers:  workers,
		logger:   logger.WithName("batch"),
	}
}

// Run evaluates jobs. A failing job does not stop the others; its error is
// recorded in its Outcome. Jobs not started before ctx is done get a
// TIMEOUT outcome and Run returns ctx's error alongside the outcomes.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	batchID := uuid.New().String()
	logger := r.logger.WithField("batch_id", batchID)
	timer := logger.StartTimer("batch").WithField("jobs", len(jobs))

	outcomes := make([]Outcome, len(jobs))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			outcomes[i] = failed(i, job.Name, mdwerror.Wrap(ctx.Err(), "batch cancelled").
				WithCode(mdwerror.CodeTimeout))
			continue
		}
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			defer func() { <-sem }()
			jobCtx := calc.WithRequestID(ctx, fmt.Sprintf("%s/%d", batchID, i+1))
			outcomes[i] = r.runJob(jobCtx, i, job)
		}(i, job)
	}
	wg.Wait()

	failures := 0
	for _, o := range outcomes {
		if !o.OK() {
			failures++
		}
	}
	timer.WithField("failures", failures).Stop()

	if err := ctx.Err(); err != nil {
		return outcomes, mdwerror.Wrap(err, "batch cancelled").
			WithCode(mdwerror.CodeTimeout).
			WithDetail("batch_id", batchID)
	}
	return outcomes, nil
}

func (r *Runner) runJob(ctx context.Context, i int, job Job) Outcome {
	req, err := job.Request(r.defaults)
	if err != nil {
		return failed(i, job.Name, err)
	}
	result, err := r.calc.Calculate(ctx, req, nil)
	if err != nil {
		var e *mdwerror.Error
		if errors.As(err, &e) {
			e.WithDetail("job", job.Name)
		}
		return failed(i, job.Name, err)
	}
	return Outcome{Index: i, Name: job.Name, Result: result}
}

func failed(i int, name string, err error) Outcome {
	return Outcome{
		Index: i,
		Name:  name,
		Error: err.Error(),
		Code:  string(mdwerror.GetCode(err)),
		Err:   err,
	}
}

// WriteJSONLines writes one JSON object per outcome.
func WriteJSONLines(w io.Writer, outcomes []Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, o := range outcomes {
		if err := enc.Encode(o); err != nil {
			return mdwerror.Wrap(err, "failed to write outcome").
				WithCode(mdwerror.CodeExportFailed).
				WithDetail("job", o.Name)
		}
	}
	return nil
}

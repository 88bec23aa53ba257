package optimize

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
	"github.com/dd0wney/cluso-infoflow/pkg/parallel"
	"github.com/dd0wney/cluso-infoflow/pkg/validation"
)

// ErrNoTrials means every trial failed.
var ErrNoTrials = errors.New("no trial produced a result")

// TrialsOptions configures a batch of independent optimizer runs.
type TrialsOptions struct {
	// Trials is the number of independent runs.
	Trials int
	// Workers bounds the concurrent runs. Zero means GOMAXPROCS.
	Workers int
	// BaseSeed seeds trial i with BaseSeed + i.
	BaseSeed uint64
	// Optimize configures each run; its Seed field is overridden.
	Optimize Options
}

// DefaultTrialsOptions returns the default trial configuration.
func DefaultTrialsOptions() TrialsOptions {
	return TrialsOptions{
		Trials:   8,
		Optimize: DefaultOptions(),
	}
}

// Validate checks the numeric ranges of the options.
func (o TrialsOptions) Validate() error {
	return validation.NewConfigValidator("TrialsOptions").
		Positive("Trials", o.Trials).
		Custom("Optimize", o.Optimize.Validate).
		Validate()
}

// Trial is the outcome of one optimizer run within a batch.
type Trial struct {
	ID       string
	Seed     uint64
	Result   *Result
	Duration time.Duration
	Err      error
}

// RunTrials runs independent optimizer trials with distinct seeds over a
// shared read-only graph and returns the best result. Each trial owns
// its own partition state and map equation, and writes only its own slot
// of the batch.
func (o *Optimizer) RunTrials(g *graph.Model, opts TrialsOptions) (*Result, []Trial, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	pool := parallel.NewTrialPool(opts.Workers)

	trials := make([]Trial, opts.Trials)
	err := pool.Run(opts.Trials, func(i int) {
		id := uuid.NewString()
		seed := opts.BaseSeed + uint64(i)
		runOpts := opts.Optimize
		runOpts.Seed = seed

		worker := &Optimizer{
			Log:     o.Log.With(logging.Trial(id)),
			Metrics: o.Metrics,
			Abort:   o.Abort,
		}
		start := time.Now()
		result, runErr := worker.Run(g, runOpts)
		elapsed := time.Since(start)
		if o.Metrics != nil {
			status := "ok"
			if runErr != nil {
				status = "error"
				if errors.Is(runErr, ErrAborted) {
					status = "aborted"
				}
			}
			o.Metrics.RecordTrial(status, elapsed)
		}

		trials[i] = Trial{ID: id, Seed: seed, Result: result, Duration: elapsed, Err: runErr}
	})
	if err != nil {
		return nil, trials, err
	}

	var best *Result
	for i := range trials {
		t := &trials[i]
		if t.Result == nil || (t.Err != nil && !errors.Is(t.Err, ErrAborted)) {
			continue
		}
		if best == nil || t.Result.Codelength < best.Codelength {
			best = t.Result
		}
	}
	if best == nil {
		return nil, trials, ErrNoTrials
	}
	o.Log.Info("trials done",
		logging.Int("trials", opts.Trials),
		logging.Codelength(best.Codelength),
		logging.Int("modules", best.NumModules))
	return best, trials, nil
}

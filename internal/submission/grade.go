package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/marcus/gentasks/internal/exercise"
	"github.com/marcus/gentasks/internal/logging"
	"github.com/marcus/gentasks/internal/reporting"
	"github.com/marcus/gentasks/internal/tasks"
)

// GradeOptions configures a grading run.
type GradeOptions struct {
	Check tasks.CheckOptions
	// Seed is recorded in the results; Check.Rand should already be seeded with it.
	Seed uint64
	// Timeout bounds each exercise. Zero means no limit. A step call that
	// never returns is not interrupted.
	Timeout time.Duration
}

// Grade checks factory against ex, converting panics in submission code into
// ErrPanicked failures.
func Grade(ctx context.Context, ex *exercise.Exercise, factory exercise.Factory, opts GradeOptions) (res exercise.CheckResult, err error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return ex.CheckGenerator(ctx, factory, opts.Check)
}

// Run grades s against every exercise and records the outcomes.
func Run(ctx context.Context, s *Submission, exercises []*exercise.Exercise, opts GradeOptions) *reporting.CheckResults {
	log := logging.Component("submission")
	results := reporting.NewCheckResults(s.Path, opts.Seed)
	factory := s.Factory()

	for _, ex := range exercises {
		if ctx.Err() != nil {
			break
		}
		started := time.Now()
		res, err := Grade(ctx, ex, factory, opts)
		rec := results.Record(ex, res, err, time.Since(started))
		log.InfoCtx("exercise graded", map[string]any{
			"run":        results.ID,
			"tasks":      rec.Tasks,
			"status":     rec.Status,
			"variants":   rec.Variants,
			"steps":      rec.Steps,
			"elapsed_ms": rec.Duration.Milliseconds(),
		})
	}
	results.Finish()
	return results
}

// Package bench times the generation queries and reference self-checks.
package bench

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/marcus/gentasks/internal/exercise"
	"github.com/marcus/gentasks/internal/generator"
	"github.com/marcus/gentasks/internal/tasks"
)

// Sample is one timed measurement.
type Sample struct {
	Label      string        `json:"label"`
	Iterations int           `json:"iterations"`
	Items      int           `json:"items"` // exercises yielded or variants checked, summed
	Elapsed    time.Duration `json:"elapsed"`
}

// PerOp is the mean time of one iteration.
func (s Sample) PerOp() time.Duration {
	if s.Iterations == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Iterations)
}

// Query is a named generation query.
type Query struct {
	Label string
	Run   func(*generator.Engine) (int, error)
}

// DefaultQueries are the threshold and range scans commonly timed together.
func DefaultQueries() []Query {
	return []Query{
		{Label: "under 10", Run: func(e *generator.Engine) (int, error) {
			return drain(e.TasksUnderComplexity(10, true)), nil
		}},
		{Label: "range [7, 13)", Run: rangeQuery(7, 13)},
		{Label: "range [2, 14)", Run: rangeQuery(2, 14)},
	}
}

func rangeQuery(start, end int) func(*generator.Engine) (int, error) {
	return func(e *generator.Engine) (int, error) {
		seq, err := e.TasksInRange(start, end, true)
		if err != nil {
			return 0, err
		}
		return drain(seq), nil
	}
}

func drain(seq iter.Seq[*exercise.Exercise]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

// Generation runs every query iterations times and walks each result fully.
func Generation(ctx context.Context, e *generator.Engine, iterations int, queries []Query) ([]Sample, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("bench: iterations must be positive, got %d", iterations)
	}
	samples := make([]Sample, 0, len(queries))
	for _, q := range queries {
		s := Sample{Label: q.Label, Iterations: iterations}
		started := time.Now()
		for range iterations {
			if err := ctx.Err(); err != nil {
				return samples, err
			}
			n, err := q.Run(e)
			if err != nil {
				return samples, fmt.Errorf("bench: %s: %w", q.Label, err)
			}
			s.Items += n
		}
		s.Elapsed = time.Since(started)
		samples = append(samples, s)
	}
	return samples, nil
}

// Validation checks the reference of every exercise with exactly members task
// types against itself repeat times.
func Validation(ctx context.Context, e *generator.Engine, members, repeat int, opts tasks.CheckOptions) ([]Sample, error) {
	if repeat <= 0 {
		return nil, fmt.Errorf("bench: repeat must be positive, got %d", repeat)
	}
	var samples []Sample
	for ex := range e.TasksAmount(members, false) {
		s := Sample{Label: strings.Join(ex.Names(), "+"), Iterations: repeat}
		started := time.Now()
		for range repeat {
			res, err := ex.CheckGenerator(ctx, ex.Reference, opts)
			if err != nil {
				return samples, fmt.Errorf("bench: %s: %w", s.Label, err)
			}
			s.Items += res.Variants
		}
		s.Elapsed = time.Since(started)
		samples = append(samples, s)
	}
	return samples, nil
}

// Render writes samples as an aligned table.
func Render(w io.Writer, samples []Sample) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tITERATIONS\tITEMS\tTOTAL\tPER OP")
	for _, s := range samples {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.Label,
			humanize.Comma(int64(s.Iterations)),
			humanize.Comma(int64(s.Items)),
			s.Elapsed.Round(time.Microsecond),
			s.PerOp(),
		)
	}
	return tw.Flush()
}

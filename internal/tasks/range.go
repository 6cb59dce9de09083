package tasks

import (
	"context"

	"github.com/marcus/gentasks/internal/stepseq"
)

var rangeSchema = []Param{
	{Name: "start", Kind: KindInt},
	{Name: "end", Kind: KindInt},
}

// Range yields the integers start..end-1 in ascending order.
type Range struct{}

func (Range) Name() string { return "Range" }
func (Range) Complexity() int { return 1 }
func (Range) Notes() []string { return nil }
func (Range) Schema() []Param { return rangeSchema }

// New requires two ints with start < end.
func (t Range) New(args ...any) (Instance, error) {
	if err := validateArgs(t.Name(), rangeSchema, args); err != nil {
		return nil, err
	}
	start, end := args[0].(int), args[1].(int)
	if start >= end {
		return nil, constructionf(t.Name(), "start must be lower than end, got %d >= %d", start, end)
	}
	return &rangeInstance{typ: t, start: start, end: end, step: 1}, nil
}

// BoundaryCases covers adjacent bounds on both sides of zero and a wide
// symmetric span.
func (t Range) BoundaryCases() []Instance {
	return []Instance{
		&rangeInstance{typ: t, start: -1, end: 0, step: 1},
		&rangeInstance{typ: t, start: 0, end: 1, step: 1},
		&rangeInstance{typ: t, start: -100, end: 100, step: 1},
	}
}

// NegativeRange yields the integers start down to end+1.
type NegativeRange struct{}

func (NegativeRange) Name() string { return "NegativeRange" }
func (NegativeRange) Complexity() int { return 2 }
func (NegativeRange) Notes() []string { return nil }
func (NegativeRange) Schema() []Param { return rangeSchema }

// New requires two ints with start > end.
func (t NegativeRange) New(args ...any) (Instance, error) {
	if err := validateArgs(t.Name(), rangeSchema, args); err != nil {
		return nil, err
	}
	start, end := args[0].(int), args[1].(int)
	if start <= end {
		return nil, constructionf(t.Name(), "start must be greater than end, got %d <= %d", start, end)
	}
	return &rangeInstance{typ: t, start: start, end: end, step: -1}, nil
}

// BoundaryCases mirrors Range's cases in the descending direction.
func (t NegativeRange) BoundaryCases() []Instance {
	return []Instance{
		&rangeInstance{typ: t, start: 1, end: 0, step: -1},
		&rangeInstance{typ: t, start: 0, end: -1, step: -1},
		&rangeInstance{typ: t, start: 100, end: -100, step: -1},
	}
}

// rangeInstance serves both directions; step is +1 or -1.
type rangeInstance struct {
	typ        TaskType
	start, end int
	step       int
}

func (r *rangeInstance) Type() TaskType { return r.typ }
func (r *rangeInstance) Args() []any    { return []any{r.start, r.end} }

func (r *rangeInstance) Reference() stepseq.Sequence {
	return &rangeSeq{next: r.start, end: r.end, step: r.step}
}

func (r *rangeInstance) Check(ctx context.Context, candidate stepseq.Sequence, _ CheckOptions) (int, error) {
	return comparePairwise(ctx, r.typ.Name(), r.Reference(), candidate, 0)
}

type rangeSeq struct {
	next, end, step int
	done            bool
}

func (s *rangeSeq) Step(any) (any, bool) {
	if s.done || (s.step > 0 && s.next >= s.end) || (s.step < 0 && s.next <= s.end) {
		s.done = true
		return nil, false
	}
	v := s.next
	s.next += s.step
	return v, true
}

func (s *rangeSeq) Terminate() (any, bool) {
	s.done = true
	return nil, false
}

// comparePairwise steps reference and candidate in lockstep until the
// reference is exhausted or limit steps have been compared. The candidate is
// never advanced past the reference's last value.
func comparePairwise(ctx context.Context, task string, reference, candidate stepseq.Sequence, limit int) (int, error) {
	defer func() { _ = stepseq.Close(reference) }()
	steps := 0
	for limit <= 0 || steps < limit {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		want, ok := reference.Step(nil)
		if !ok {
			return steps, nil
		}
		got, ok := candidate.Step(nil)
		if !ok {
			if steps == 0 {
				return steps, terminatedf(task, steps+1, "finished at start, expected %v", want)
			}
			return steps, terminatedf(task, steps+1, "finished early, expected %v", want)
		}
		steps++
		if err := compare(task, steps, want, got); err != nil {
			return steps, err
		}
	}
	return steps, nil
}

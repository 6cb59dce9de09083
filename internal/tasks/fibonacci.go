package tasks

import (
	"context"
	"math/big"

	"github.com/marcus/gentasks/internal/stepseq"
)

// Fibonacci yields 0, 1, 1, 2, 3, 5, ... as *big.Int until it receives the
// termination signal, then yields the value the next step would have
// produced and finishes.
type Fibonacci struct{}

func (Fibonacci) Name() string    { return "Fibonacci" }
func (Fibonacci) Complexity() int { return 7 }
func (Fibonacci) Notes() []string { return []string{NoteTerminate} }
func (Fibonacci) Schema() []Param { return nil }

func (t Fibonacci) New(args ...any) (Instance, error) {
	if err := validateArgs(t.Name(), nil, args); err != nil {
		return nil, err
	}
	return &fibonacciInstance{typ: t}, nil
}

func (t Fibonacci) BoundaryCases() []Instance {
	return []Instance{&fibonacciInstance{typ: t}}
}

type fibonacciInstance struct {
	typ TaskType
}

func (f *fibonacciInstance) Type() TaskType { return f.typ }
func (f *fibonacciInstance) Args() []any    { return []any{} }

func (f *fibonacciInstance) Reference() stepseq.Sequence {
	return &fibonacciSeq{cur: big.NewInt(0), next: big.NewInt(1)}
}

// Check compares a random number of steps in [400, 400+FibonacciExtraSteps],
// then sends the termination signal and requires exactly one final value.
func (f *fibonacciInstance) Check(ctx context.Context, candidate stepseq.Sequence, opts CheckOptions) (int, error) {
	task := f.typ.Name()
	n := DefaultFibonacciSteps + opts.rng().IntN(opts.fibonacciExtra()+1)

	reference := f.Reference()
	steps, err := comparePairwise(ctx, task, &limited{Sequence: reference, left: n}, candidate, 0)
	if err != nil {
		return steps, err
	}

	want, _ := reference.Terminate()
	got, ok := candidate.Terminate()
	if !ok {
		return steps, terminatedf(task, steps+1, "finished on the termination signal, expected final value %v", want)
	}
	steps++
	if err := compare(task, steps, want, got); err != nil {
		return steps, err
	}
	return steps, nil
}

type fibonacciSeq struct {
	cur, next *big.Int
	done      bool
}

func (s *fibonacciSeq) Step(any) (any, bool) {
	if s.done {
		return nil, false
	}
	return s.advance(), true
}

func (s *fibonacciSeq) Terminate() (any, bool) {
	if s.done {
		return nil, false
	}
	s.done = true
	return s.advance(), true
}

// advance returns the current number and moves one position forward.
func (s *fibonacciSeq) advance() *big.Int {
	out := new(big.Int).Set(s.cur)
	s.cur, s.next = s.next, new(big.Int).Add(s.cur, s.next)
	return out
}

// limited stops a sequence after left steps without finishing it.
type limited struct {
	stepseq.Sequence
	left int
}

func (l *limited) Step(in any) (any, bool) {
	if l.left <= 0 {
		return nil, false
	}
	l.left--
	return l.Sequence.Step(in)
}

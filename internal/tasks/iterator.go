package tasks

import (
	"context"
	"fmt"

	"github.com/marcus/gentasks/internal/stepseq"
)

// Iterator passes through the elements of an externally supplied iterable.
//
// Slices and arrays can be checked any number of times. Channels and step
// sequences are consumed by the first walk, so an instance built from one of
// those supports a single Reference or Check.
type Iterator struct{}

func (Iterator) Name() string    { return "Iterator" }
func (Iterator) Complexity() int { return 3 }
func (Iterator) Notes() []string { return nil }

func (Iterator) Schema() []Param {
	return []Param{{Name: "iterable", Kind: KindIterable}}
}

func (t Iterator) New(args ...any) (Instance, error) {
	if err := validateArgs(t.Name(), t.Schema(), args); err != nil {
		return nil, err
	}
	return &iteratorInstance{typ: t, source: args[0]}, nil
}

// BoundaryCases covers empty, short and heterogeneous sources of both
// untyped and typed element kinds.
func (t Iterator) BoundaryCases() []Instance {
	return []Instance{
		&iteratorInstance{typ: t, source: []any{}},
		&iteratorInstance{typ: t, source: []any{1, 2}},
		&iteratorInstance{typ: t, source: []int{}},
		&iteratorInstance{typ: t, source: []int{1, 2}},
		&iteratorInstance{typ: t, source: []any{1, "two", 3.5, nil}},
	}
}

type iteratorInstance struct {
	typ    TaskType
	source any
}

func (it *iteratorInstance) Type() TaskType { return it.typ }
func (it *iteratorInstance) Args() []any    { return []any{it.source} }

func (it *iteratorInstance) Reference() stepseq.Sequence {
	s, err := stepseq.FromIterable(it.source)
	if err != nil {
		// New and BoundaryCases only admit iterable sources.
		panic(fmt.Sprintf("tasks: iterator source %T: %v", it.source, err))
	}
	return s
}

// Check compares element by element. A source with at least one element
// requires the candidate to produce at least one.
func (it *iteratorInstance) Check(ctx context.Context, candidate stepseq.Sequence, opts CheckOptions) (int, error) {
	return comparePairwise(ctx, it.typ.Name(), it.Reference(), candidate, opts.MaxIteratorSteps)
}

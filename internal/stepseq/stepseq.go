// Package stepseq defines the step-sequence contract shared by reference
// implementations and learner candidates.
//
// A Sequence is driven one step at a time. Each Step feeds an input value
// (nil when the caller has nothing to send) and returns the next output.
// Terminate delivers the explicit termination signal; sequences that react
// to it return one final value and are finished afterwards.
package stepseq

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"reflect"
)

// ErrNotIterable is returned by FromIterable for values that cannot be walked.
var ErrNotIterable = errors.New("stepseq: value is not iterable")

// Sequence is a stateful interaction producing values across discrete steps.
type Sequence interface {
	// Step feeds in and returns the next output. ok is false once the
	// sequence is exhausted; every later call returns false as well.
	Step(in any) (out any, ok bool)

	// Terminate delivers the termination signal. A sequence that handles it
	// returns exactly one final value with ok true and may keep stepping
	// afterwards when it combines several behaviours; one that does not
	// returns ok false and is finished.
	Terminate() (out any, ok bool)
}

// Funcs adapts plain closures to a Sequence.
// A nil TerminateFunc makes Terminate finish the sequence without a value.
// A TerminateFunc answering ok true leaves the sequence running, so a single
// closure pair can serve a combined stream whose later members still step.
type Funcs struct {
	StepFunc      func(in any) (any, bool)
	TerminateFunc func() (any, bool)

	done bool
}

// Step calls StepFunc until it reports exhaustion.
func (f *Funcs) Step(in any) (any, bool) {
	if f.done || f.StepFunc == nil {
		f.done = true
		return nil, false
	}
	out, ok := f.StepFunc(in)
	if !ok {
		f.done = true
		return nil, false
	}
	return out, true
}

// Terminate forwards the signal to TerminateFunc. The sequence is finished
// only when TerminateFunc is nil or reports ok false.
func (f *Funcs) Terminate() (any, bool) {
	if f.done {
		return nil, false
	}
	if f.TerminateFunc == nil {
		f.done = true
		return nil, false
	}
	out, ok := f.TerminateFunc()
	if !ok {
		f.done = true
		return nil, false
	}
	return out, true
}

// valuesSeq walks a fixed slice of values.
type valuesSeq struct {
	values []any
	pos    int
}

// FromValues returns a sequence yielding vals in order, ignoring inputs.
func FromValues(vals ...any) Sequence {
	return &valuesSeq{values: vals}
}

func (v *valuesSeq) Step(any) (any, bool) {
	if v.pos >= len(v.values) {
		return nil, false
	}
	out := v.values[v.pos]
	v.pos++
	return out, true
}

func (v *valuesSeq) Terminate() (any, bool) {
	v.pos = len(v.values)
	return nil, false
}

// pullSeq walks an iter.Seq through iter.Pull.
type pullSeq struct {
	next func() (any, bool)
	stop func()
	done bool
}

// FromSeq returns a sequence walking seq. The returned sequence implements
// io.Closer; closing it releases the underlying pull iterator.
func FromSeq(seq iter.Seq[any]) Sequence {
	next, stop := iter.Pull(seq)
	return &pullSeq{next: next, stop: stop}
}

func (p *pullSeq) Step(any) (any, bool) {
	if p.done {
		return nil, false
	}
	out, ok := p.next()
	if !ok {
		_ = p.Close()
		return nil, false
	}
	return out, true
}

func (p *pullSeq) Terminate() (any, bool) {
	_ = p.Close()
	return nil, false
}

// Close stops the pull iterator.
func (p *pullSeq) Close() error {
	if !p.done {
		p.done = true
		p.stop()
	}
	return nil
}

// drainSeq walks another Sequence by stepping it with nil inputs.
type drainSeq struct {
	src  Sequence
	done bool
}

func (d *drainSeq) Step(any) (any, bool) {
	if d.done {
		return nil, false
	}
	out, ok := d.src.Step(nil)
	if !ok {
		d.done = true
	}
	return out, ok
}

func (d *drainSeq) Terminate() (any, bool) {
	d.done = true
	return nil, false
}

// Close closes the wrapped sequence when it holds resources.
func (d *drainSeq) Close() error {
	return Close(d.src)
}

// CheckIterable reports whether FromIterable accepts v.
func CheckIterable(v any) error {
	switch v.(type) {
	case Sequence, iter.Seq[any]:
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return nil
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir == 0 {
			return fmt.Errorf("%w: send-only channel %T", ErrNotIterable, v)
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrNotIterable, v)
	}
}

// FromIterable returns a sequence walking any supported enumerable shape:
// slices, arrays, receive channels, iter.Seq[any] and other Sequences.
// Re-iterable sources (slices, arrays, iter.Seq) may be walked many times;
// channels and Sequences are consumed.
func FromIterable(v any) (Sequence, error) {
	if err := CheckIterable(v); err != nil {
		return nil, err
	}
	switch src := v.(type) {
	case Sequence:
		return &drainSeq{src: src}, nil
	case iter.Seq[any]:
		return FromSeq(src), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Chan {
		return FromSeq(func(yield func(any) bool) {
			for {
				item, ok := rv.Recv()
				if !ok || !yield(item.Interface()) {
					return
				}
			}
		}), nil
	}
	vals := make([]any, rv.Len())
	for i := range vals {
		vals[i] = rv.Index(i).Interface()
	}
	return FromValues(vals...), nil
}

// Close releases s if it implements io.Closer.
func Close(s Sequence) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Collect steps s with nil inputs until it is exhausted or limit values have
// been read. A limit of zero or less means no limit.
func Collect(s Sequence, limit int) []any {
	var out []any
	for limit <= 0 || len(out) < limit {
		v, ok := s.Step(nil)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// Package exercise composes task types into a single gradable unit.
//
// An Exercise holds an ordered list of task types. A learner's candidate
// factory receives one argument tuple per member and must return a single
// step sequence performing every member's behaviour in order.
package exercise

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/marcus/gentasks/internal/catalog"
	"github.com/marcus/gentasks/internal/logging"
	"github.com/marcus/gentasks/internal/stepseq"
	"github.com/marcus/gentasks/internal/tasks"
)

// maxExamples bounds the example invocations rendered into a description.
const maxExamples = 3

// ErrIndexOutOfRange is returned by Pop for an invalid member index.
var ErrIndexOutOfRange = errors.New("exercise: index out of range")

// Variant is one argument tuple per member, in member order.
type Variant [][]any

// String renders the variant as a call, e.g. Main((1, 5), ("key")).
func (v Variant) String() string {
	parts := make([]string, len(v))
	for i, args := range v {
		parts[i] = tasks.FormatArgs(args)
	}
	return "Main(" + strings.Join(parts, ", ") + ")"
}

// Factory builds a candidate step sequence from one argument tuple per member.
// The result must implement stepseq.Sequence.
type Factory func(args ...[]any) any

// Exercise is an ordered bundle of task types graded as one unit.
type Exercise struct {
	tasks      []tasks.TaskType
	complexity int
}

// New returns an exercise holding ts in order.
func New(ts ...tasks.TaskType) *Exercise {
	e := &Exercise{tasks: make([]tasks.TaskType, 0, len(ts))}
	for _, t := range ts {
		e.Append(t)
	}
	return e
}

func (e *Exercise) String() string {
	return fmt.Sprintf("<Exercise with %d tasks>", len(e.tasks))
}

// Append adds t as the last member.
func (e *Exercise) Append(t tasks.TaskType) {
	e.tasks = append(e.tasks, t)
	e.complexity += t.Complexity()
}

// Pop removes and returns the member at index.
func (e *Exercise) Pop(index int) (tasks.TaskType, error) {
	if index < 0 || index >= len(e.tasks) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(e.tasks))
	}
	t := e.tasks[index]
	e.tasks = slices.Delete(e.tasks, index, index+1)
	e.complexity -= t.Complexity()
	return t, nil
}

// Complexity is the sum of the members' complexities.
func (e *Exercise) Complexity() int { return e.complexity }

// Len returns the number of members.
func (e *Exercise) Len() int { return len(e.tasks) }

// Tasks returns a copy of the members in order.
func (e *Exercise) Tasks() []tasks.TaskType {
	return slices.Clone(e.tasks)
}

// Names returns the members' qualified names in order.
func (e *Exercise) Names() []string {
	names := make([]string, len(e.tasks))
	for i, t := range e.tasks {
		names[i] = t.Name()
	}
	return names
}

// Notes returns the sorted union of the members' note keys.
func (e *Exercise) Notes() []string {
	seen := map[string]bool{}
	var notes []string
	for _, t := range e.tasks {
		for _, n := range t.Notes() {
			if !seen[n] {
				seen[n] = true
				notes = append(notes, n)
			}
		}
	}
	sort.Strings(notes)
	return notes
}

// Variants yields argument vectors covering every boundary case of every
// member at least once without the full cross product.
//
// Each position is varied in turn across its second and later cases while
// every other position holds its first case; the all-first baseline comes
// last. An exercise without members yields one empty variant.
func (e *Exercise) Variants() iter.Seq[Variant] {
	return func(yield func(Variant) bool) {
		cases := make([][][]any, len(e.tasks))
		base := make(Variant, len(e.tasks))
		for i, t := range e.tasks {
			for _, inst := range t.BoundaryCases() {
				cases[i] = append(cases[i], inst.Args())
			}
			if len(cases[i]) > 0 {
				base[i] = cases[i][0]
			}
		}

		for i := range cases {
			for _, c := range cases[i][min(1, len(cases[i])):] {
				v := cloneVariant(base)
				v[i] = cloneTuple(c)
				if !yield(v) {
					return
				}
			}
		}
		yield(cloneVariant(base))
	}
}

// Description renders the intro, the numbered member statements, up to three
// example calls sampled from Variants with r, and the notes section.
func (e *Exercise) Description(texts catalog.Texts, r *rand.Rand) string {
	if r == nil {
		r = tasks.NewRand(0)
	}
	var b strings.Builder
	b.WriteString("\t" + texts.Intro())

	for i, t := range e.tasks {
		fmt.Fprintf(&b, "\n%d. %s", i+1, texts.Statement(t.Name()))
	}

	variants := slices.Collect(e.Variants())
	r.Shuffle(len(variants), func(i, j int) {
		variants[i], variants[j] = variants[j], variants[i]
	})
	b.WriteString("\n\t" + texts.ExamplesHeader())
	for _, v := range variants[:min(maxExamples, len(variants))] {
		b.WriteString("\n" + v.String())
	}

	if notes := e.Notes(); len(notes) > 0 {
		b.WriteString("\n\t" + texts.NotesHeader())
		for _, n := range notes {
			b.WriteString("\n" + texts.Note(n))
		}
	}
	return b.String()
}

// Instances binds v to the members, validating each tuple.
func (e *Exercise) Instances(v Variant) ([]tasks.Instance, error) {
	if len(v) != len(e.tasks) {
		return nil, fmt.Errorf("exercise: %d argument tuples for %d tasks", len(v), len(e.tasks))
	}
	insts := make([]tasks.Instance, len(e.tasks))
	for i, t := range e.tasks {
		inst, err := t.New(v[i]...)
		if err != nil {
			return nil, err
		}
		insts[i] = inst
	}
	return insts, nil
}

// Reference is a Factory producing the correct combined sequence: every
// member's reference chained in order. It returns an error value, which is
// not a sequence, when the arguments do not fit the members.
func (e *Exercise) Reference(args ...[]any) any {
	insts, err := e.Instances(Variant(args))
	if err != nil {
		return err
	}
	seqs := make([]stepseq.Sequence, len(insts))
	for i, inst := range insts {
		seqs[i] = inst.Reference()
	}
	return stepseq.Chain(seqs...)
}

// CheckResult summarises a successful CheckGenerator run.
type CheckResult struct {
	Variants int
	Steps    int
}

// CheckGenerator grades factory against every variant.
//
// Each variant gets a fresh factory call, whose sequence is handed to every
// member's check in order. The first failure aborts the whole run and is
// returned wrapped in a *VariantError.
func (e *Exercise) CheckGenerator(ctx context.Context, factory Factory, opts tasks.CheckOptions) (CheckResult, error) {
	log := logging.Component("exercise")
	var res CheckResult
	for v := range e.Variants() {
		steps, err := e.checkVariant(ctx, factory, v, opts)
		res.Steps += steps
		if err != nil {
			log.DebugCtx("variant failed", map[string]any{
				"tasks":   strings.Join(e.Names(), "+"),
				"variant": v.String(),
				"error":   err.Error(),
			})
			return res, &VariantError{Variant: v, Err: err}
		}
		res.Variants++
	}
	log.DebugCtx("exercise passed", map[string]any{
		"tasks":    strings.Join(e.Names(), "+"),
		"variants": res.Variants,
		"steps":    res.Steps,
	})
	return res, nil
}

func (e *Exercise) checkVariant(ctx context.Context, factory Factory, v Variant, opts tasks.CheckOptions) (int, error) {
	insts, err := e.Instances(v)
	if err != nil {
		return 0, err
	}
	produced := factory(cloneVariant(v)...)
	seq, ok := produced.(stepseq.Sequence)
	if !ok || seq == nil {
		return 0, &tasks.TaskError{
			Kind:   tasks.ErrContractViolation,
			Task:   "factory",
			Actual: produced,
			Msg:    fmt.Sprintf("returned %T", produced),
		}
	}
	defer func() { _ = stepseq.Close(seq) }()

	total := 0
	for _, inst := range insts {
		steps, err := inst.Check(ctx, seq, opts)
		total += steps
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// cloneVariant copies every tuple of v so a candidate writing into its
// arguments cannot reach the reference instances bound to v.
func cloneVariant(v Variant) Variant {
	out := make(Variant, len(v))
	for i, tuple := range v {
		out[i] = cloneTuple(tuple)
	}
	return out
}

// cloneTuple copies tuple and any slice among its arguments. Channels and
// step sequences are passed through as they are.
func cloneTuple(tuple []any) []any {
	out := make([]any, len(tuple))
	for i, arg := range tuple {
		rv := reflect.ValueOf(arg)
		if rv.Kind() != reflect.Slice || rv.IsNil() {
			out[i] = arg
			continue
		}
		cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(cp, rv)
		out[i] = cp.Interface()
	}
	return out
}

// VariantError reports the variant a check failed on.
type VariantError struct {
	Variant Variant
	Err     error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("%s: %v", e.Variant, e.Err)
}

func (e *VariantError) Unwrap() error { return e.Err }

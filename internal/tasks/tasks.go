// Package tasks defines the task-type protocol, the built-in task types and
// the registry they are installed into.
//
// A task type is a parameterised behaviour archetype with a fixed complexity.
// Constructing it with concrete arguments yields an Instance, which can
// produce the reference step sequence and check a candidate against it.
package tasks

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/marcus/gentasks/internal/stepseq"
)

// Default check limits.
const (
	DefaultFibonacciSteps      = 400
	DefaultFibonacciExtraSteps = 100
	DefaultKeywordAttempts     = 14
)

// Footnote keys declared by the built-in task types.
const (
	NoteSend      = "send"
	NoteTerminate = "terminate"
)

// ParamKind is the accepted kind of a task parameter.
type ParamKind int

const (
	KindInt ParamKind = iota
	KindString
	KindIterable
)

// String returns the kind name used in schema listings.
func (k ParamKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindIterable:
		return "iterable"
	default:
		return "unknown"
	}
}

// Param is one named, typed entry of a task type's input schema.
type Param struct {
	Name string
	Kind ParamKind
}

// TaskType is the capability contract every task type implements.
type TaskType interface {
	// Name is the qualified name used to look up the problem statement.
	Name() string
	// Complexity is unique among registered task types.
	Complexity() int
	// Notes lists footnote keys rendered under an exercise description.
	Notes() []string
	// Schema lists the ordered parameters New expects.
	Schema() []Param
	// New validates args against the schema and the type's predicates.
	New(args ...any) (Instance, error)
	// BoundaryCases returns the fixed, ordered edge parameterisations.
	BoundaryCases() []Instance
}

// Instance is a task type bound to concrete arguments.
type Instance interface {
	Type() TaskType
	// Args returns the bound arguments in schema order.
	Args() []any
	// Reference returns a fresh canonical step sequence.
	Reference() stepseq.Sequence
	// Check drives candidate against the reference and returns the number of
	// interaction steps performed. It fails on the first divergence.
	Check(ctx context.Context, candidate stepseq.Sequence, opts CheckOptions) (int, error)
}

// CheckOptions bounds and seeds the randomised parts of conformance checks.
type CheckOptions struct {
	// Rand drives fuzz inputs and step counts. Nil uses an unseeded source.
	Rand *rand.Rand
	// FibonacciExtraSteps widens the Fibonacci window above its 400 step floor.
	FibonacciExtraSteps int
	// KeywordAttempts is the number of non-matching inputs fed before the keyword.
	KeywordAttempts int
	// MaxIteratorSteps caps Iterator comparisons; zero means unbounded.
	MaxIteratorSteps int
}

// DefaultCheckOptions returns the standard limits with a source seeded from seed.
// A zero seed yields an unseeded source.
func DefaultCheckOptions(seed uint64) CheckOptions {
	return CheckOptions{
		Rand:                NewRand(seed),
		FibonacciExtraSteps: DefaultFibonacciExtraSteps,
		KeywordAttempts:     DefaultKeywordAttempts,
	}
}

// NewRand returns a PCG source for seed, or a randomly seeded one when seed is zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (o CheckOptions) rng() *rand.Rand {
	if o.Rand == nil {
		return NewRand(0)
	}
	return o.Rand
}

func (o CheckOptions) keywordAttempts() int {
	if o.KeywordAttempts <= 0 {
		return DefaultKeywordAttempts
	}
	return o.KeywordAttempts
}

func (o CheckOptions) fibonacciExtra() int {
	if o.FibonacciExtraSteps < 0 {
		return 0
	}
	return o.FibonacciExtraSteps
}

// validateArgs checks arity and kinds of args against schema.
func validateArgs(task string, schema []Param, args []any) error {
	if len(args) != len(schema) {
		return constructionf(task, "expected %d arguments, got %d", len(schema), len(args))
	}
	for i, p := range schema {
		switch p.Kind {
		case KindInt:
			if _, ok := args[i].(int); !ok {
				return constructionf(task, "%s must be int, got %T", p.Name, args[i])
			}
		case KindString:
			if _, ok := args[i].(string); !ok {
				return constructionf(task, "%s must be string, got %T", p.Name, args[i])
			}
		case KindIterable:
			if err := stepseq.CheckIterable(args[i]); err != nil {
				return constructionf(task, "%s: %v", p.Name, err)
			}
		default:
			return constructionf(task, "%s has unknown kind %s", p.Name, p.Kind)
		}
	}
	return nil
}

// FormatArgs renders bound arguments as a call tuple, e.g. (1, 5) or ("key").
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatValue(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

package tasks

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
)

var (
	// ErrConstruction indicates parameters failed a type or range predicate.
	ErrConstruction = errors.New("invalid task parameters")
	// ErrContractViolation indicates a candidate factory did not return a step sequence.
	ErrContractViolation = errors.New("candidate is not a step sequence")
	// ErrMismatch indicates an observed value or value kind diverged from the reference.
	ErrMismatch = errors.New("conformance mismatch")
	// ErrUnexpectedTermination indicates the candidate finished before the reference did.
	ErrUnexpectedTermination = errors.New("unexpected termination")
	// ErrDuplicateComplexity indicates two registered task types share a complexity.
	ErrDuplicateComplexity = errors.New("duplicate task complexity")
	// ErrDuplicateName indicates two registered task types share a name.
	ErrDuplicateName = errors.New("duplicate task name")
	// ErrInvalidComplexity indicates a task type declared a non-positive complexity.
	ErrInvalidComplexity = errors.New("task complexity must be positive")
)

// TaskError wraps one of the sentinel kinds with the task and step it concerns.
type TaskError struct {
	Kind     error
	Task     string
	Step     int // 1-based; zero when the failure is not tied to a step
	Expected any
	Actual   any
	Msg      string
}

func (e *TaskError) Error() string {
	if e == nil {
		return ""
	}
	prefix := e.Task
	if e.Step > 0 {
		prefix = fmt.Sprintf("%s step %d", e.Task, e.Step)
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", prefix, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", prefix, e.Kind, e.Msg)
}

func (e *TaskError) Unwrap() error { return e.Kind }

func constructionf(task, format string, args ...any) error {
	return &TaskError{Kind: ErrConstruction, Task: task, Msg: fmt.Sprintf(format, args...)}
}

func terminatedf(task string, step int, format string, args ...any) error {
	return &TaskError{Kind: ErrUnexpectedTermination, Task: task, Step: step, Msg: fmt.Sprintf(format, args...)}
}

// compare returns a mismatch error when actual differs from expected in kind or value.
func compare(task string, step int, expected, actual any) error {
	if kindOf(expected) != kindOf(actual) {
		return &TaskError{
			Kind:     ErrMismatch,
			Task:     task,
			Step:     step,
			Expected: expected,
			Actual:   actual,
			Msg:      fmt.Sprintf("expected type %s, got %s (%v)", kindOf(expected), kindOf(actual), actual),
		}
	}
	if !sameValue(expected, actual) {
		return &TaskError{
			Kind:     ErrMismatch,
			Task:     task,
			Step:     step,
			Expected: expected,
			Actual:   actual,
			Msg:      fmt.Sprintf("expected %v, got %v", expected, actual),
		}
	}
	return nil
}

func kindOf(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

func sameValue(expected, actual any) bool {
	if eb, ok := expected.(*big.Int); ok {
		ab := actual.(*big.Int)
		if eb == nil || ab == nil {
			return eb == ab
		}
		return eb.Cmp(ab) == 0
	}
	return reflect.DeepEqual(expected, actual)
}

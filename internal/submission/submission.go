// Package submission loads learner solutions written in Go and grades them.
//
// A submission is a single package main file interpreted at runtime. It must
// declare
//
//	func Main(args ...[]any) (step func(any) (any, bool), terminate func() (any, bool))
//
// and may declare
//
//	var Tasks = []string{"Range", "AwaitKeyword"}
//
// naming the exercise it solves. Main receives one argument tuple per task and
// returns the step and terminate functions of a single combined sequence.
// A nil terminate means the sequence ignores the termination signal. A
// terminate answering ok true leaves the sequence running, so one closure
// pair can serve members after a terminated one.
//
// Submissions run under yaegi, which rejects a parallel assignment such as
// a, b = b, new(big.Int).Add(a, b) when a is later returned as any: it panics
// with "reflect.Set: value of type interface {} is not assignable to type
// big.Int". Assign through a temporary instead:
//
//	sum := new(big.Int).Add(a, b)
//	a = b
//	b = sum
package submission

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/marcus/gentasks/internal/exercise"
	"github.com/marcus/gentasks/internal/stepseq"
	"github.com/marcus/gentasks/internal/tasks"
)

const (
	mainFuncName = "Main"
	tasksVarName = "Tasks"
)

// MainFunc is the signature a submission's Main must have.
type MainFunc = func(args ...[]any) (func(any) (any, bool), func() (any, bool))

// ErrPanicked is returned when submission code panics during a check.
var ErrPanicked = errors.New("submission panicked")

// Submission is an interpreted learner solution.
type Submission struct {
	Path string
	// Tasks is the exercise the file declares it solves, if any.
	Tasks []string

	main MainFunc
}

// Load interprets the file at path and resolves its Main function.
func Load(path string) (*Submission, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("submission: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("submission: %s is empty", path)
	}
	return load(path, string(code))
}

// Parse interprets src as a submission named name.
func Parse(name, src string) (*Submission, error) {
	if len(strings.TrimSpace(src)) == 0 {
		return nil, fmt.Errorf("submission: %s is empty", name)
	}
	return load(name, src)
}

func load(name, src string) (s *Submission, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submission: interpret %s: %w: %v", name, ErrPanicked, r)
		}
	}()

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("submission: load stdlib: %w", err)
	}
	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("submission: interpret %s: %w", name, err)
	}

	fnValue, err := i.Eval(mainFuncName)
	if err != nil {
		return nil, fmt.Errorf("submission: %s must define %s: %w", name, mainFuncName, err)
	}
	main, err := asMain(fnValue)
	if err != nil {
		return nil, fmt.Errorf("submission: %s: %w", name, err)
	}

	s = &Submission{Path: name, main: main}
	if v, err := i.Eval(tasksVarName); err == nil {
		names, ok := v.Interface().([]string)
		if !ok {
			return nil, fmt.Errorf("submission: %s: %s must be []string, got %s", name, tasksVarName, v.Type())
		}
		s.Tasks = names
	}
	return s, nil
}

func asMain(value reflect.Value) (MainFunc, error) {
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil, &tasks.TaskError{
			Kind: tasks.ErrContractViolation,
			Task: mainFuncName,
			Msg:  "is not a function",
		}
	}
	main, ok := value.Interface().(MainFunc)
	if !ok {
		return nil, &tasks.TaskError{
			Kind: tasks.ErrContractViolation,
			Task: mainFuncName,
			Msg:  fmt.Sprintf("has signature %s, want %T", value.Type(), MainFunc(nil)),
		}
	}
	return main, nil
}

// Factory adapts Main into an exercise factory. A nil step function yields a
// value that is not a sequence, which the check reports as a contract
// violation.
func (s *Submission) Factory() exercise.Factory {
	return func(args ...[]any) any {
		step, terminate := s.main(args...)
		if step == nil {
			return nil
		}
		return &stepseq.Funcs{StepFunc: step, TerminateFunc: terminate}
	}
}

// Exercise resolves the declared task names against reg.
func (s *Submission) Exercise(reg *tasks.Registry) (*exercise.Exercise, error) {
	return Resolve(reg, s.Tasks)
}

// Resolve builds an exercise from task names in order.
func Resolve(reg *tasks.Registry, names []string) (*exercise.Exercise, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("submission: no tasks named")
	}
	ex := exercise.New()
	for _, name := range names {
		t, ok := reg.Lookup(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("submission: unknown task type %q", name)
		}
		ex.Append(t)
	}
	return ex, nil
}

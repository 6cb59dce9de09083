package submission

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/gentasks/internal/exercise"
	"github.com/marcus/gentasks/internal/reporting"
	"github.com/marcus/gentasks/internal/tasks"
)

const rangeKeywordSolution = `package main

var Tasks = []string{"Range", "AwaitKeyword"}

func Main(args ...[]any) (func(any) (any, bool), func() (any, bool)) {
	start, end := args[0][0].(int), args[0][1].(int)
	keyword := args[1][0].(string)
	next := start
	done := false
	step := func(in any) (any, bool) {
		if next < end {
			next++
			return next - 1, true
		}
		if done {
			return nil, false
		}
		if s, ok := in.(string); ok && s == keyword {
			done = true
			return keyword, true
		}
		return nil, true
	}
	terminate := func() (any, bool) { return nil, false }
	return step, terminate
}
`

const offByOneSolution = `package main

func Main(args ...[]any) (func(any) (any, bool), func() (any, bool)) {
	next, end := args[0][0].(int), args[0][1].(int)
	step := func(any) (any, bool) {
		if next > end {
			return nil, false
		}
		next++
		return next - 1, true
	}
	return step, func() (any, bool) { return nil, false }
}
`

const fibonacciRangeSolution = `package main

import "math/big"

var Tasks = []string{"Fibonacci", "Range"}

func Main(args ...[]any) (func(any) (any, bool), func() (any, bool)) {
	a, b := big.NewInt(0), big.NewInt(1)
	advance := func() any {
		out := new(big.Int).Set(a)
		sum := new(big.Int).Add(a, b)
		a = b
		b = sum
		return out
	}
	fibDone := false
	next, end := args[1][0].(int), args[1][1].(int)
	step := func(any) (any, bool) {
		if !fibDone {
			return advance(), true
		}
		if next < end {
			next++
			return next - 1, true
		}
		return nil, false
	}
	terminate := func() (any, bool) {
		fibDone = true
		return advance(), true
	}
	return step, terminate
}
`

const panickingSolution = `package main

func Main(args ...[]any) (func(any) (any, bool), func() (any, bool)) {
	panic("not implemented")
}
`

func registry(t *testing.T) *tasks.Registry {
	t.Helper()
	reg, err := tasks.NewBuiltinRegistry()
	require.NoError(t, err)
	return reg
}

func gradeOpts() GradeOptions {
	return GradeOptions{Check: tasks.DefaultCheckOptions(4), Seed: 4, Timeout: time.Minute}
}

func TestParseSolution(t *testing.T) {
	s, err := Parse("solution.go", rangeKeywordSolution)
	require.NoError(t, err)
	assert.Equal(t, []string{"Range", "AwaitKeyword"}, s.Tasks)

	ex, err := s.Exercise(registry(t))
	require.NoError(t, err)
	assert.Equal(t, 5, ex.Complexity())

	res, err := Grade(context.Background(), ex, s.Factory(), gradeOpts())
	require.NoError(t, err)
	assert.Equal(t, 6, res.Variants)
}

func TestFibonacciThenRangeSolution(t *testing.T) {
	s, err := Parse("fib.go", fibonacciRangeSolution)
	require.NoError(t, err)

	ex, err := s.Exercise(registry(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Fibonacci", "Range"}, ex.Names())

	res, err := Grade(context.Background(), ex, s.Factory(), gradeOpts())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Variants)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", "   "},
		{"syntax error", "package main\nfunc Main( {"},
		{"no main", "package main\nfunc Other() {}\n"},
		{"wrong tasks type", "package main\nvar Tasks = 3\n" + offByOneSolution[len("package main\n"):]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.name, tc.src)
			require.Error(t, err)
		})
	}
}

func TestParseWrongSignature(t *testing.T) {
	_, err := Parse("sig.go", "package main\nfunc Main() int { return 1 }\n")
	require.ErrorIs(t, err, tasks.ErrContractViolation)
}

func TestGradeFailures(t *testing.T) {
	reg := registry(t)
	ex, err := Resolve(reg, []string{"Range"})
	require.NoError(t, err)

	s, err := Parse("off.go", offByOneSolution)
	require.NoError(t, err)
	assert.Empty(t, s.Tasks)

	// The surplus value leaks into the next member's output.
	ex.Append(tasks.NegativeRange{})
	_, err = Grade(context.Background(), ex, s.Factory(), gradeOpts())
	require.Error(t, err)

	p, err := Parse("panic.go", panickingSolution)
	require.NoError(t, err)
	_, err = Grade(context.Background(), ex, p.Factory(), gradeOpts())
	require.ErrorIs(t, err, ErrPanicked)
}

func TestRun(t *testing.T) {
	reg := registry(t)
	s, err := Parse("solution.go", rangeKeywordSolution)
	require.NoError(t, err)

	good, err := s.Exercise(reg)
	require.NoError(t, err)
	other, err := Resolve(reg, []string{"Fibonacci"})
	require.NoError(t, err)

	results := Run(context.Background(), s, []*exercise.Exercise{good, other}, gradeOpts())
	require.Len(t, results.Exercises, 2)
	assert.Equal(t, reporting.StatusPassed, results.Exercises[0].Status)
	assert.NotEqual(t, reporting.StatusPassed, results.Exercises[1].Status)
	assert.Equal(t, uint64(4), results.Seed)
	assert.False(t, results.EndTime.IsZero())
}

func TestResolve(t *testing.T) {
	reg := registry(t)
	ex, err := Resolve(reg, []string{"Iterator", " Fibonacci "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Iterator", "Fibonacci"}, ex.Names())

	_, err = Resolve(reg, []string{"Nope"})
	require.Error(t, err)
	_, err = Resolve(reg, nil)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.go")
	require.NoError(t, os.WriteFile(path, []byte(rangeKeywordSolution), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.go"))
	require.Error(t, err)
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.go")
	require.NoError(t, os.WriteFile(path, []byte(rangeKeywordSolution), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 10*time.Millisecond, func() { changed <- struct{}{} })
	}()

	// Writes may land before the watcher is registered, so keep touching the
	// file until one is observed.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(5 * time.Second)
	for observed := false; !observed; {
		select {
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte(rangeKeywordSolution), 0644))
		case <-changed:
			observed = true
		case <-deadline:
			t.Fatal("no change observed")
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

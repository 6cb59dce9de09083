package stepseq_test

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/gentasks/internal/stepseq"
)

func TestFromValues(t *testing.T) {
	s := stepseq.FromValues(1, "two", nil)
	require.Equal(t, []any{1, "two", nil}, stepseq.Collect(s, 0))

	_, ok := s.Step(nil)
	assert.False(t, ok, "exhausted sequence must stay exhausted")
}

func TestFromValuesTerminate(t *testing.T) {
	s := stepseq.FromValues(1, 2, 3)
	_, _ = s.Step(nil)
	out, ok := s.Terminate()
	assert.False(t, ok)
	assert.Nil(t, out)
	_, ok = s.Step(nil)
	assert.False(t, ok)
}

func TestFuncs(t *testing.T) {
	n := 0
	s := &stepseq.Funcs{
		StepFunc: func(in any) (any, bool) {
			n++
			if n > 2 {
				return nil, false
			}
			return in, true
		},
		TerminateFunc: func() (any, bool) { return "bye", true },
	}
	out, ok := s.Step("a")
	require.True(t, ok)
	assert.Equal(t, "a", out)

	out, ok = s.Terminate()
	require.True(t, ok)
	assert.Equal(t, "bye", out)

	out, ok = s.Step("b")
	require.True(t, ok, "answering the signal keeps the sequence running")
	assert.Equal(t, "b", out)

	_, ok = s.Step("c")
	assert.False(t, ok)
	_, ok = s.Terminate()
	assert.False(t, ok, "exhausted sequence ignores the signal")
}

func TestFuncsTerminateRefused(t *testing.T) {
	s := &stepseq.Funcs{
		StepFunc:      func(any) (any, bool) { return 1, true },
		TerminateFunc: func() (any, bool) { return nil, false },
	}
	_, ok := s.Terminate()
	assert.False(t, ok)
	_, ok = s.Step(nil)
	assert.False(t, ok, "refusing the signal finishes the sequence")
}

func TestFuncsWithoutTerminate(t *testing.T) {
	s := &stepseq.Funcs{StepFunc: func(any) (any, bool) { return 1, true }}
	_, ok := s.Terminate()
	assert.False(t, ok)
	_, ok = s.Step(nil)
	assert.False(t, ok)
}

func TestFromIterable(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 4
	ch <- 5
	close(ch)

	var seq iter.Seq[any] = func(yield func(any) bool) {
		for _, v := range []any{"x", "y"} {
			if !yield(v) {
				return
			}
		}
	}

	tests := []struct {
		name string
		src  any
		want []any
	}{
		{"int slice", []int{1, 2, 3}, []any{1, 2, 3}},
		{"empty slice", []any{}, nil},
		{"array", [2]string{"a", "b"}, []any{"a", "b"}},
		{"channel", ch, []any{4, 5}},
		{"iter.Seq", seq, []any{"x", "y"}},
		{"sequence", stepseq.FromValues(7, 8), []any{7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := stepseq.FromIterable(tt.src)
			require.NoError(t, err)
			defer func() { _ = stepseq.Close(s) }()
			assert.Equal(t, tt.want, stepseq.Collect(s, 0))
		})
	}
}

func TestFromIterableRejects(t *testing.T) {
	for _, v := range []any{42, "text", map[string]int{"a": 1}, nil, make(chan<- int)} {
		_, err := stepseq.FromIterable(v)
		assert.ErrorIs(t, err, stepseq.ErrNotIterable, "%T", v)
	}
}

func TestFromSeqStopsEarly(t *testing.T) {
	stopped := false
	var seq iter.Seq[any] = func(yield func(any) bool) {
		defer func() { stopped = true }()
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	}
	s := stepseq.FromSeq(seq)
	require.Equal(t, []any{0, 1, 2}, stepseq.Collect(s, 3))
	require.NoError(t, stepseq.Close(s))
	assert.True(t, stopped)
}

func TestChain(t *testing.T) {
	c := stepseq.Chain(
		stepseq.FromValues(1, 2),
		stepseq.FromValues(),
		stepseq.FromValues("a"),
	)
	assert.Equal(t, []any{1, 2, "a"}, stepseq.Collect(c, 0))
}

func TestChainRedeliversInput(t *testing.T) {
	var got []any
	echo := &stepseq.Funcs{StepFunc: func(in any) (any, bool) {
		got = append(got, in)
		return in, true
	}}
	c := stepseq.Chain(stepseq.FromValues(1), echo)

	out, ok := c.Step("first")
	require.True(t, ok)
	assert.Equal(t, 1, out)

	out, ok = c.Step("second")
	require.True(t, ok)
	assert.Equal(t, "second", out)
	assert.Equal(t, []any{"second"}, got)
}

func TestChainTerminate(t *testing.T) {
	last := &stepseq.Funcs{
		StepFunc:      func(any) (any, bool) { return 0, true },
		TerminateFunc: func() (any, bool) { return "final", true },
	}
	c := stepseq.Chain(stepseq.FromValues(1, 2), last, stepseq.FromValues(3))

	out, ok := c.Terminate()
	require.True(t, ok)
	assert.Equal(t, "final", out)

	out, ok = c.Step(nil)
	require.True(t, ok, "members after the terminated one keep running")
	assert.Equal(t, 3, out)
}

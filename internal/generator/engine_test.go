package generator

import (
	"context"
	"iter"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/gentasks/internal/exercise"
	"github.com/marcus/gentasks/internal/logging"
	"github.com/marcus/gentasks/internal/tasks"
)

func builtinEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	reg, err := tasks.NewBuiltinRegistry()
	require.NoError(t, err)
	e, err := New(reg, append([]Option{WithLogger(logging.Nop())}, opts...)...)
	require.NoError(t, err)
	return e
}

func names(ex *exercise.Exercise) string {
	n := ex.Names()
	sort.Strings(n)
	return strings.Join(n, "+")
}

func complexities(seq iter.Seq[*exercise.Exercise]) []int {
	var out []int
	for ex := range seq {
		out = append(out, ex.Complexity())
	}
	return out
}

// stubType is a task type with only a name and a complexity.
type stubType struct {
	name string
	cost int
}

func (s stubType) Name() string                       { return s.name }
func (s stubType) Complexity() int                    { return s.cost }
func (s stubType) Notes() []string                    { return nil }
func (s stubType) Schema() []tasks.Param              { return nil }
func (s stubType) New(...any) (tasks.Instance, error) { return nil, nil }
func (s stubType) BoundaryCases() []tasks.Instance    { return nil }

func stubEngine(t *testing.T, costs ...int) *Engine {
	t.Helper()
	reg := tasks.NewRegistry()
	for i, c := range costs {
		reg.MustRegister(stubType{name: string(rune('A' + i)), cost: c})
	}
	e, err := New(reg, WithLogger(logging.Nop()))
	require.NoError(t, err)
	return e
}

func TestIndexCoversEverySubset(t *testing.T) {
	e := builtinEngine(t)
	assert.Equal(t, 31, e.Len())

	lo, hi := e.Bounds()
	assert.Equal(t, 1, lo)
	assert.Equal(t, 17, hi)

	seen := map[string]bool{}
	combos := e.Combinations()
	for i, c := range combos {
		key := strings.Join(c.Names(), "+")
		assert.False(t, seen[key], "duplicate %s", key)
		seen[key] = true
		if i > 0 {
			assert.LessOrEqual(t, combos[i-1].Complexity, c.Complexity)
		}
	}
	assert.True(t, seen["Range+NegativeRange+AwaitKeyword+Iterator+Fibonacci"])
}

func TestIndexTieBreak(t *testing.T) {
	e := builtinEngine(t)
	var tier7 []string
	for _, c := range e.Combinations() {
		if c.Complexity == 7 {
			tier7 = append(tier7, strings.Join(c.Names(), "+"))
		}
	}
	assert.Equal(t, []string{
		"Fibonacci",
		"AwaitKeyword+Iterator",
		"Range+NegativeRange+AwaitKeyword",
	}, tier7)
}

func TestCombinationsIsACopy(t *testing.T) {
	e := builtinEngine(t)
	combos := e.Combinations()
	combos[0].Tasks[0] = tasks.Fibonacci{}
	combos[0].Complexity = 99

	again := e.Combinations()
	assert.Equal(t, "Range", again[0].Tasks[0].Name())
	assert.Equal(t, 1, again[0].Complexity)
}

func TestTasksUnderComplexity(t *testing.T) {
	e := builtinEngine(t)

	tests := []struct {
		threshold int
		want      []int
	}{
		{0, nil},
		{1, nil},
		{2, []int{1}},
		{5, []int{1, 2, 3, 3, 4, 4}},
	}
	for _, tt := range tests {
		got := complexities(e.TasksUnderComplexity(tt.threshold, false))
		assert.Equal(t, tt.want, got, "threshold %d", tt.threshold)
	}

	assert.Len(t, complexities(e.TasksUnderComplexity(100, true)), 31)
}

func TestTasksUnderComplexityIsRestartable(t *testing.T) {
	e := builtinEngine(t)
	seq := e.TasksUnderComplexity(8, false)

	first := complexities(seq)
	second := complexities(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 13)
}

func TestTasksInRange(t *testing.T) {
	e := builtinEngine(t)

	seq, err := e.TasksInRange(2, 10, false)
	require.NoError(t, err)
	got := complexities(seq)
	require.Len(t, got, 16)
	for _, c := range got {
		assert.True(t, c >= 2 && c < 10, "complexity %d", c)
	}

	seq, err = e.TasksInRange(5, 6, true)
	require.NoError(t, err)
	var pairs []string
	for ex := range seq {
		pairs = append(pairs, names(ex))
	}
	assert.Equal(t, []string{"AwaitKeyword+Range", "Iterator+NegativeRange"}, pairs)
}

func TestTasksInRangeClampsBounds(t *testing.T) {
	e := builtinEngine(t)

	seq, err := e.TasksInRange(-50, 3, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, complexities(seq))

	seq, err = e.TasksInRange(14, 1000, false)
	require.NoError(t, err)
	assert.Equal(t, []int{14, 14, 15, 16, 17}, complexities(seq))

	seq, err = e.TasksInRange(-1, 1000, false)
	require.NoError(t, err)
	assert.Len(t, complexities(seq), 31)
}

func TestTasksInRangeDomainErrors(t *testing.T) {
	e := builtinEngine(t)
	for _, tc := range [][2]int{{5, 5}, {6, 2}, {18, 30}} {
		_, err := e.TasksInRange(tc[0], tc[1], false)
		assert.ErrorIs(t, err, ErrNoCombinations, "%v", tc)
	}

	sparse := stubEngine(t, 1, 10)
	_, err := sparse.TasksInRange(2, 10, false)
	require.ErrorIs(t, err, ErrNoCombinations)

	seq, err := sparse.TasksInRange(2, 11, false)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, complexities(seq))

	empty := stubEngine(t)
	_, err = empty.TasksInRange(0, 10, false)
	require.ErrorIs(t, err, ErrNoCombinations)
}

func TestTasksAmount(t *testing.T) {
	e := builtinEngine(t)

	tests := []struct {
		k    int
		want int
	}{
		{0, 0},
		{1, 5},
		{2, 10},
		{3, 10},
		{4, 5},
		{5, 1},
		{6, 0},
	}
	for _, tt := range tests {
		count := 0
		for ex := range e.TasksAmount(tt.k, true) {
			assert.Equal(t, tt.k, ex.Len())
			count++
		}
		assert.Equal(t, tt.want, count, "k=%d", tt.k)
	}

	var singles []string
	for ex := range e.TasksAmount(1, false) {
		singles = append(singles, ex.Names()[0])
	}
	assert.Equal(t, []string{"Range", "NegativeRange", "Iterator", "AwaitKeyword", "Fibonacci"}, singles)
}

func TestShuffleKeepsMembersAndComplexity(t *testing.T) {
	e := builtinEngine(t, WithSeed(11))

	ordered := slices.Collect(e.TasksAmount(5, false))
	shuffled := slices.Collect(e.TasksAmount(5, true))
	require.Len(t, ordered, 1)
	require.Len(t, shuffled, 1)
	assert.Equal(t, ordered[0].Complexity(), shuffled[0].Complexity())
	assert.ElementsMatch(t, ordered[0].Names(), shuffled[0].Names())
}

func TestSeededShuffleIsReproducible(t *testing.T) {
	order := func(e *Engine) []string {
		var out []string
		for ex := range e.TasksUnderComplexity(100, true) {
			out = append(out, strings.Join(ex.Names(), "+"))
		}
		return out
	}
	a := builtinEngine(t, WithSeed(5))
	b := builtinEngine(t, WithSeed(5))
	assert.Equal(t, order(a), order(b))
	assert.Equal(t, order(a), order(a))
}

func TestRandom(t *testing.T) {
	e := builtinEngine(t, WithSeed(3))
	for range 20 {
		ex, err := e.Random(5)
		require.NoError(t, err)
		assert.Less(t, ex.Complexity(), 5)
	}

	_, err := e.Random(1)
	require.ErrorIs(t, err, ErrNoCombinations)
}

func TestNewRejectsBadRegistries(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	reg := tasks.NewRegistry()
	for i := range MaxTypes + 1 {
		reg.MustRegister(stubType{name: "T" + string(rune('a'+i)), cost: i + 1})
	}
	_, err = New(reg, WithLogger(logging.Nop()))
	require.ErrorIs(t, err, ErrTooManyTypes)
}

func TestConcurrentQueries(t *testing.T) {
	e := builtinEngine(t)
	var wg sync.WaitGroup
	counts := make([]int, 8)
	for i := range counts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range e.TasksUnderComplexity(10, true) {
				counts[i]++
			}
			_, _ = e.Random(10)
		}()
	}
	wg.Wait()
	for _, c := range counts {
		assert.Equal(t, 17, c)
	}
}

func TestGeneratedExercisesPassTheirReference(t *testing.T) {
	e := builtinEngine(t, WithSeed(9))
	opts := tasks.DefaultCheckOptions(9)
	opts.FibonacciExtraSteps = 0

	for ex := range e.TasksAmount(2, true) {
		res, err := ex.CheckGenerator(context.Background(), ex.Reference, opts)
		require.NoError(t, err, strings.Join(ex.Names(), "+"))
		assert.Positive(t, res.Variants)
	}
}

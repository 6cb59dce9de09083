// Package generator answers complexity queries over every combination of the
// registered task types.
//
// The engine enumerates all non-empty subsets of the registry once, at
// construction, and keeps them sorted by aggregate complexity. Queries are
// lazy scans over that immutable index and are safe for concurrent use.
package generator

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/marcus/gentasks/internal/exercise"
	"github.com/marcus/gentasks/internal/logging"
	"github.com/marcus/gentasks/internal/tasks"
)

// MaxTypes bounds the registry size the engine will index (2^MaxTypes-1 entries).
const MaxTypes = 20

var (
	// ErrNoCombinations is returned when a complexity range holds no combination.
	ErrNoCombinations = errors.New("no combinations in range")
	// ErrTooManyTypes is returned when the registry exceeds MaxTypes.
	ErrTooManyTypes = errors.New("too many task types to index")
)

// Combination is one indexed subset of task types.
type Combination struct {
	Tasks      []tasks.TaskType
	Complexity int
}

// Names returns the members' names in registration order.
func (c Combination) Names() []string {
	names := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		names[i] = t.Name()
	}
	return names
}

// Engine holds the combination index.
type Engine struct {
	index  []Combination
	seed   uint64
	logger *logging.Logger

	mu   sync.Mutex
	rand *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithSeed makes member shuffling and Random reproducible. Zero means unseeded.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// New indexes every non-empty subset of reg's task types.
func New(reg *tasks.Registry, opts ...Option) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("generator: registry is required")
	}
	e := &Engine{logger: logging.Component("generator")}
	for _, opt := range opts {
		opt(e)
	}
	e.rand = tasks.NewRand(e.seed)

	types := reg.Types()
	if len(types) > MaxTypes {
		return nil, fmt.Errorf("generator: %w: %d > %d", ErrTooManyTypes, len(types), MaxTypes)
	}

	started := time.Now()
	e.index = buildIndex(types)
	lo, hi := e.Bounds()
	e.logger.InfoCtx("combination index built", map[string]any{
		"types":        len(types),
		"combinations": len(e.index),
		"min":          lo,
		"max":          hi,
		"elapsed":      time.Since(started).String(),
	})
	return e, nil
}

// buildIndex enumerates subsets by size, each size in lexicographic order of
// registration position, then stable-sorts them by complexity.
func buildIndex(types []tasks.TaskType) []Combination {
	index := make([]Combination, 0, (1<<len(types))-1)
	for size := 1; size <= len(types); size++ {
		for picked := range subsets(len(types), size) {
			c := Combination{Tasks: make([]tasks.TaskType, len(picked))}
			for i, p := range picked {
				c.Tasks[i] = types[p]
				c.Complexity += types[p].Complexity()
			}
			index = append(index, c)
		}
	}
	sort.SliceStable(index, func(i, j int) bool {
		return index[i].Complexity < index[j].Complexity
	})
	return index
}

// subsets yields the size-element index combinations of [0, n) in
// lexicographic order. The yielded slice is reused between iterations.
func subsets(n, size int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if size <= 0 || size > n {
			return
		}
		picked := make([]int, size)
		for i := range picked {
			picked[i] = i
		}
		for {
			if !yield(picked) {
				return
			}
			i := size - 1
			for i >= 0 && picked[i] == n-size+i {
				i--
			}
			if i < 0 {
				return
			}
			picked[i]++
			for j := i + 1; j < size; j++ {
				picked[j] = picked[j-1] + 1
			}
		}
	}
}

// Len returns the number of indexed combinations.
func (e *Engine) Len() int { return len(e.index) }

// Combinations returns a copy of the index in ascending complexity order.
func (e *Engine) Combinations() []Combination {
	out := make([]Combination, len(e.index))
	for i, c := range e.index {
		out[i] = Combination{Tasks: append([]tasks.TaskType(nil), c.Tasks...), Complexity: c.Complexity}
	}
	return out
}

// Bounds returns the lowest and highest indexed complexity, or zeros for an
// empty index.
func (e *Engine) Bounds() (lo, hi int) {
	if len(e.index) == 0 {
		return 0, 0
	}
	return e.index[0].Complexity, e.index[len(e.index)-1].Complexity
}

// TasksUnderComplexity yields an exercise for every combination with
// complexity strictly below threshold, in ascending order.
func (e *Engine) TasksUnderComplexity(threshold int, shuffle bool) iter.Seq[*exercise.Exercise] {
	end := sort.Search(len(e.index), func(i int) bool {
		return e.index[i].Complexity >= threshold
	})
	return e.scan(0, end, shuffle)
}

// TasksInRange yields an exercise for every combination with complexity in
// [start, end). Bounds beyond the index are clamped to it: start rises to the
// lowest indexed complexity and end falls to one past the highest, so the
// highest complexity stays reachable. It fails with ErrNoCombinations when
// the clamped range holds nothing, including start >= end with start itself
// indexed, rather than yielding an empty sequence.
func (e *Engine) TasksInRange(start, end int, shuffle bool) (iter.Seq[*exercise.Exercise], error) {
	if len(e.index) == 0 {
		return nil, fmt.Errorf("generator: %w: index is empty", ErrNoCombinations)
	}
	lo, hi := e.Bounds()
	if end > hi+1 {
		end = hi + 1
	}
	if start < lo {
		start = lo
	}
	if start >= end {
		return nil, fmt.Errorf("generator: %w: [%d, %d)", ErrNoCombinations, start, end)
	}

	first := sort.Search(len(e.index), func(i int) bool {
		return e.index[i].Complexity >= start
	})
	if first == len(e.index) || e.index[first].Complexity >= end {
		return nil, fmt.Errorf("generator: %w: [%d, %d)", ErrNoCombinations, start, end)
	}
	last := sort.Search(len(e.index), func(i int) bool {
		return e.index[i].Complexity >= end
	})
	return e.scan(first, last, shuffle), nil
}

// TasksAmount yields, in index order, an exercise for every combination with
// exactly k members.
func (e *Engine) TasksAmount(k int, shuffle bool) iter.Seq[*exercise.Exercise] {
	return func(yield func(*exercise.Exercise) bool) {
		r := e.iterationRand(shuffle)
		for _, c := range e.index {
			if len(c.Tasks) != k {
				continue
			}
			if !yield(newExercise(c, r)) {
				return
			}
		}
	}
}

// Random returns one combination under threshold chosen uniformly.
func (e *Engine) Random(threshold int) (*exercise.Exercise, error) {
	end := sort.Search(len(e.index), func(i int) bool {
		return e.index[i].Complexity >= threshold
	})
	if end == 0 {
		return nil, fmt.Errorf("generator: %w: below %d", ErrNoCombinations, threshold)
	}
	e.mu.Lock()
	c := e.index[e.rand.IntN(end)]
	r := tasks.NewRand(e.rand.Uint64() | 1)
	e.mu.Unlock()
	return newExercise(c, r), nil
}

func (e *Engine) scan(from, to int, shuffle bool) iter.Seq[*exercise.Exercise] {
	return func(yield func(*exercise.Exercise) bool) {
		r := e.iterationRand(shuffle)
		for _, c := range e.index[from:to] {
			if !yield(newExercise(c, r)) {
				return
			}
		}
	}
}

// iterationRand returns the source for one walk of a query, or nil when
// members keep registration order. Each walk starts from the engine seed so
// restarting a seeded query repeats its member orders.
func (e *Engine) iterationRand(shuffle bool) *rand.Rand {
	if !shuffle {
		return nil
	}
	return tasks.NewRand(e.seed)
}

func newExercise(c Combination, r *rand.Rand) *exercise.Exercise {
	members := append([]tasks.TaskType(nil), c.Tasks...)
	if r != nil {
		r.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
	}
	return exercise.New(members...)
}

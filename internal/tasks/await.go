package tasks

import (
	"context"
	"math/rand/v2"

	"github.com/marcus/gentasks/internal/stepseq"
)

const (
	letters        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxFuzzWordLen = 30
)

// AwaitKeyword accepts inputs until it receives exactly the keyword, then
// echoes it and finishes.
type AwaitKeyword struct{}

func (AwaitKeyword) Name() string    { return "AwaitKeyword" }
func (AwaitKeyword) Complexity() int { return 4 }
func (AwaitKeyword) Notes() []string { return []string{NoteSend} }

func (AwaitKeyword) Schema() []Param {
	return []Param{{Name: "keyword", Kind: KindString}}
}

// New requires a single string keyword. The empty string is allowed.
func (t AwaitKeyword) New(args ...any) (Instance, error) {
	if err := validateArgs(t.Name(), t.Schema(), args); err != nil {
		return nil, err
	}
	return &awaitInstance{typ: t, keyword: args[0].(string)}, nil
}

func (t AwaitKeyword) BoundaryCases() []Instance {
	return []Instance{
		&awaitInstance{typ: t, keyword: "keyword"},
		&awaitInstance{typ: t, keyword: ""},
		&awaitInstance{typ: t, keyword: "Валу"},
		&awaitInstance{typ: t, keyword: "123"},
	}
}

type awaitInstance struct {
	typ     TaskType
	keyword string
}

func (a *awaitInstance) Type() TaskType { return a.typ }
func (a *awaitInstance) Args() []any    { return []any{a.keyword} }

func (a *awaitInstance) Reference() stepseq.Sequence {
	return &awaitSeq{keyword: a.keyword}
}

// Check feeds KeywordAttempts random non-matching words, each of which must
// keep the candidate running, then the keyword, which must be echoed back.
func (a *awaitInstance) Check(ctx context.Context, candidate stepseq.Sequence, opts CheckOptions) (int, error) {
	task := a.typ.Name()
	rng := opts.rng()
	steps := 0
	for range opts.keywordAttempts() {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		word := a.randomWord(rng)
		if _, ok := candidate.Step(word); !ok {
			return steps, terminatedf(task, steps+1, "finished on input %q before the keyword was sent", word)
		}
		steps++
	}

	if err := ctx.Err(); err != nil {
		return steps, err
	}
	got, ok := candidate.Step(a.keyword)
	if !ok {
		return steps, terminatedf(task, steps+1, "finished on the keyword instead of echoing it")
	}
	steps++
	if err := compare(task, steps, a.keyword, got); err != nil {
		return steps, err
	}
	return steps, nil
}

// randomWord returns 0-30 ASCII letters that never equal the keyword.
func (a *awaitInstance) randomWord(rng *rand.Rand) string {
	for {
		n := rng.IntN(maxFuzzWordLen + 1)
		b := make([]byte, n)
		for i := range b {
			b[i] = letters[rng.IntN(len(letters))]
		}
		if w := string(b); w != a.keyword {
			return w
		}
	}
}

type awaitSeq struct {
	keyword string
	done    bool
}

func (s *awaitSeq) Step(in any) (any, bool) {
	if s.done {
		return nil, false
	}
	if word, ok := in.(string); ok && word == s.keyword {
		s.done = true
		return word, true
	}
	return nil, true
}

func (s *awaitSeq) Terminate() (any, bool) {
	s.done = true
	return nil, false
}

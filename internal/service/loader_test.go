package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/aliskhannn/trivia-quiz/internal/infra/opentdb"
)

type fakeFetcher struct {
	raw   []opentdb.RawQuestion
	err   error
	calls int
}

func (f *fakeFetcher) FetchQuestions(context.Context) ([]opentdb.RawQuestion, error) {
	f.calls++
	return f.raw, f.err
}

func rawBatch(n int) []opentdb.RawQuestion {
	raw := make([]opentdb.RawQuestion, 0, n)
	for i := 0; i < n; i++ {
		raw = append(raw, opentdb.RawQuestion{
			Question:         fmt.Sprintf("Who directed &quot;Film %d&quot;?", i),
			CorrectAnswer:    fmt.Sprintf("Director &amp; Co %d", i),
			IncorrectAnswers: []string{"Stanley Kubrick", "Jean-Luc Godard", "Fran&ccedil;ois Truffaut"},
		})
	}
	return raw
}

func TestLoadBuildsFifteenDecodedQuestions(t *testing.T) {
	f := &fakeFetcher{raw: rawBatch(15)}
	l := NewQuestionLoader(f, rand.New(rand.NewSource(1)), nil)

	qs, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.calls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", f.calls)
	}
	if len(qs) != 15 {
		t.Fatalf("expected 15 questions, got %d", len(qs))
	}

	for i, q := range qs {
		if len(q.Options) != 4 {
			t.Fatalf("q%d: %d options", i, len(q.Options))
		}
		if !q.HasOption(q.CorrectAnswer) {
			t.Fatalf("q%d: correct answer %q missing from %v", i, q.CorrectAnswer, q.Options)
		}
		if want := fmt.Sprintf("Who directed \"Film %d\"?", i); q.Text != want {
			t.Fatalf("q%d text = %q, want %q", i, q.Text, want)
		}
		if want := fmt.Sprintf("Director & Co %d", i); q.CorrectAnswer != want {
			t.Fatalf("q%d correct = %q, want %q", i, q.CorrectAnswer, want)
		}
		if !q.HasOption("François Truffaut") {
			t.Fatalf("q%d incorrect answers not decoded: %v", i, q.Options)
		}
	}
}

func TestBuildQuestionsDecodesOnce(t *testing.T) {
	raw := []opentdb.RawQuestion{{
		Question:         "Is &amp;lt; a tag?",
		CorrectAnswer:    "&amp;amp;",
		IncorrectAnswers: []string{"a", "b", "c"},
	}}

	qs, err := BuildQuestions(raw, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if qs[0].Text != "Is &lt; a tag?" {
		t.Fatalf("text decoded more than once: %q", qs[0].Text)
	}
	if qs[0].CorrectAnswer != "&amp;" {
		t.Fatalf("answer decoded more than once: %q", qs[0].CorrectAnswer)
	}
}

func TestBuildQuestionsDecodingPlainTextIsNoop(t *testing.T) {
	raw := []opentdb.RawQuestion{{
		Question:         "Plain question?",
		CorrectAnswer:    "Plain",
		IncorrectAnswers: []string{"x", "y", "z"},
	}}

	qs, err := BuildQuestions(raw, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if qs[0].Text != "Plain question?" || qs[0].CorrectAnswer != "Plain" {
		t.Fatalf("plain text changed: %+v", qs[0])
	}
}

func TestShuffleIsDeterministicWithSeedAndNotAlwaysLast(t *testing.T) {
	raw := rawBatch(15)

	a, err := NewQuestionLoader(&fakeFetcher{raw: raw}, rand.New(rand.NewSource(7)), nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	b, err := NewQuestionLoader(&fakeFetcher{raw: raw}, rand.New(rand.NewSource(7)), nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load b: %v", err)
	}

	notLast := 0
	for i := range a {
		for j := range a[i].Options {
			if a[i].Options[j] != b[i].Options[j] {
				t.Fatalf("same seed produced different order at q%d", i)
			}
		}
		if a[i].Options[3] != a[i].CorrectAnswer {
			notLast++
		}
	}
	if notLast == 0 {
		t.Fatalf("correct answer was last in every question; options are not shuffled")
	}
}

func TestShuffleIsRoughlyUniform(t *testing.T) {
	l := NewQuestionLoader(&fakeFetcher{raw: rawBatch(1)}, rand.New(rand.NewSource(99)), nil)

	counts := make([]int, 4)
	const runs = 4000
	for i := 0; i < runs; i++ {
		qs, err := l.Load(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		for pos, opt := range qs[0].Options {
			if opt == qs[0].CorrectAnswer {
				counts[pos]++
			}
		}
	}

	for pos, c := range counts {
		if c < runs/4-200 || c > runs/4+200 {
			t.Fatalf("position %d got correct answer %d/%d times: %v", pos, c, runs, counts)
		}
	}
}

func TestLoadFailures(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name    string
		fetcher *fakeFetcher
		wantErr error
	}{
		{name: "transport", fetcher: &fakeFetcher{err: boom}, wantErr: boom},
		{name: "empty", fetcher: &fakeFetcher{}, wantErr: ErrNoQuestions},
		{
			name: "too few incorrect answers",
			fetcher: &fakeFetcher{raw: []opentdb.RawQuestion{{
				Question: "q", CorrectAnswer: "a", IncorrectAnswers: []string{"b"},
			}}},
			wantErr: ErrMalformedRecord,
		},
		{
			name: "duplicate after decoding",
			fetcher: &fakeFetcher{raw: []opentdb.RawQuestion{{
				Question: "q", CorrectAnswer: "A &amp; B", IncorrectAnswers: []string{"A & B", "c", "d"},
			}}},
			wantErr: ErrMalformedRecord,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewQuestionLoader(tc.fetcher, nil, nil).Load(context.Background())

			var ff *FetchFailure
			if !errors.As(err, &ff) {
				t.Fatalf("expected *FetchFailure, got %T (%v)", err, err)
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want wrapping %v", err, tc.wantErr)
			}
			if ff.Error() == "" {
				t.Fatalf("failure must carry a message")
			}
		})
	}
}

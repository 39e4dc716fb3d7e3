package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// scriptedGenerator returns its scripted results in order, then repeats
// the last one.
type scriptedGenerator struct {
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	text string
	err  error
}

func (s *scriptedGenerator) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	r := s.results[i]
	return r.text, r.err
}

func TestGatewayRetriesOverloadWithBackoff(t *testing.T) {
	gen := &scriptedGenerator{results: []scriptedResult{
		{err: errors.New("model is overloaded, try again")},
		{err: errors.New("got 529 from upstream")},
		{text: "final article text"},
	}}

	var delays []time.Duration
	gw := NewGateway(gen, RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   5 * time.Second,
		Sleep:       func(d time.Duration) { delays = append(delays, d) },
	})

	text, err := gw.GenerateText(context.Background(), "write something", TextGenerationOptions{})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "final article text" {
		t.Errorf("text = %q", text)
	}
	if gen.calls != 3 {
		t.Errorf("calls = %d, want 3", gen.calls)
	}
	want := []time.Duration{5 * time.Second, 10 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestGatewayExhaustionWrapsErrOverloaded(t *testing.T) {
	gen := &scriptedGenerator{results: []scriptedResult{
		{err: errors.New("overloaded")},
	}}
	gw := NewGateway(gen, RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep:       func(time.Duration) {},
	})

	_, err := gw.GenerateText(context.Background(), "p", TextGenerationOptions{})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if !errors.Is(err, ErrOverloaded) {
		t.Errorf("error %v does not wrap ErrOverloaded", err)
	}
	if gen.calls != 3 {
		t.Errorf("calls = %d, want 3", gen.calls)
	}
}

func TestGatewayDoesNotRetryHardFailures(t *testing.T) {
	hardErr := fmt.Errorf("invalid request: prompt blocked")
	gen := &scriptedGenerator{results: []scriptedResult{{err: hardErr}}}

	slept := false
	gw := NewGateway(gen, RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep:       func(time.Duration) { slept = true },
	})

	_, err := gw.GenerateText(context.Background(), "p", TextGenerationOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrOverloaded) {
		t.Error("hard failure misclassified as overload")
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
	if slept {
		t.Error("gateway slept on a non-retryable failure")
	}
}

func TestIsOverloaded(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("the model is Overloaded"), true},
		{errors.New("upstream returned 529"), true},
		{errors.New("RESOURCE EXHAUSTED"), true},
		{errors.New("service unavailable"), true},
		{errors.New("invalid argument"), false},
	}
	for _, tc := range cases {
		if got := IsOverloaded(tc.err); got != tc.want {
			t.Errorf("IsOverloaded(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

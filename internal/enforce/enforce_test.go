package enforce

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aivan/internal/llm"
	"aivan/internal/sanitize"
)

// mockGenerator returns canned responses in order.
type mockGenerator struct {
	responses []string
	err       error
	prompts   []string
}

func (m *mockGenerator) GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	i := len(m.prompts) - 1
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i], nil
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestEnsureMinimumAlreadyLongEnough(t *testing.T) {
	gen := &mockGenerator{}
	e := New(gen, DefaultOptions())

	article := words(800)
	got, report := e.EnsureMinimum(context.Background(), article, 750)

	if len(gen.prompts) != 0 {
		t.Errorf("generator called %d times for sufficient article", len(gen.prompts))
	}
	if report.Rounds != 0 || !report.MetTarget {
		t.Errorf("report = %+v, want 0 rounds and met target", report)
	}
	if sanitize.CountWords(got) != 800 {
		t.Errorf("article changed: %d words", sanitize.CountWords(got))
	}
}

func TestEnsureMinimumSingleRound(t *testing.T) {
	// A 600-word article with a 750 floor: round one asks for
	// 750-600+50 = 200 words and delivers enough to finish.
	gen := &mockGenerator{responses: []string{words(200)}}
	e := New(gen, DefaultOptions())

	got, report := e.EnsureMinimum(context.Background(), words(600), 750)

	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "approximately 200 additional words") {
		t.Errorf("round one did not request shortfall plus margin:\n%s", gen.prompts[0])
	}
	if report.Rounds != 1 || !report.MetTarget {
		t.Errorf("report = %+v", report)
	}
	if got := sanitize.CountWords(got); got != 800 {
		t.Errorf("final count = %d, want 800", got)
	}
}

func TestEnsureMinimumSecondRoundStricter(t *testing.T) {
	gen := &mockGenerator{responses: []string{
		words(50),  // round one comes up short
		words(200), // strict round finishes the job
	}}
	e := New(gen, DefaultOptions())

	_, report := e.EnsureMinimum(context.Background(), words(600), 750)

	if len(gen.prompts) != 2 {
		t.Fatalf("generator called %d times, want 2", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[1], "Body paragraphs only") {
		t.Errorf("second round did not use the strict prompt:\n%s", gen.prompts[1])
	}
	if report.Rounds != 2 || !report.MetTarget {
		t.Errorf("report = %+v", report)
	}
}

func TestEnsureMinimumFiltersMetaCommentary(t *testing.T) {
	response := strings.Join([]string{
		"Here is the additional content you asked for:",
		"Additional paragraph for the intro section:",
		words(200),
	}, "\n")
	gen := &mockGenerator{responses: []string{response}}
	e := New(gen, DefaultOptions())

	got, _ := e.EnsureMinimum(context.Background(), words(600), 750)

	lower := strings.ToLower(got)
	if strings.Contains(lower, "here is") || strings.Contains(lower, "additional paragraph") {
		t.Errorf("meta-commentary leaked into article:\n%s", got)
	}
	if count := sanitize.CountWords(got); count != 800 {
		t.Errorf("final count = %d, want 800", count)
	}
}

func TestEnsureMinimumNeverShrinks(t *testing.T) {
	// Rounds that return nothing usable must leave the article intact.
	gen := &mockGenerator{responses: []string{"Here is more content:\nAdditional paragraph:"}}
	e := New(gen, DefaultOptions())

	article := words(600)
	got, report := e.EnsureMinimum(context.Background(), article, 750)

	if count := sanitize.CountWords(got); count < 600 {
		t.Errorf("article shrank to %d words", count)
	}
	if report.MetTarget {
		t.Error("target reported met without usable expansion")
	}
}

func TestEnsureMinimumGeneratorFailureIsNonFatal(t *testing.T) {
	gen := &mockGenerator{err: errors.New("upstream down")}
	e := New(gen, DefaultOptions())

	got, report := e.EnsureMinimum(context.Background(), words(600), 750)

	if count := sanitize.CountWords(got); count != 600 {
		t.Errorf("article altered on failure: %d words", count)
	}
	if report.MetTarget || report.FinalCount != 600 {
		t.Errorf("report = %+v", report)
	}
}

package revise

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aivan/internal/core"
	"aivan/internal/llm"
)

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

const article = "**The Market**\n\nHiring has slowed across the sector this quarter."

func TestReviseTranslatesMarkers(t *testing.T) {
	gen := &mockGenerator{responses: []string{
		"**The Market**\n\n[REVISED]Hiring has accelerated across the sector this quarter.[/REVISED]",
	}}
	r := New(gen, DefaultOptions())

	got, err := r.Revise(context.Background(), article, "Make the opening more positive.", core.VariantUK, false)
	if err != nil {
		t.Fatalf("Revise: %v", err)
	}
	if strings.Contains(got, "[REVISED]") || strings.Contains(got, "[/REVISED]") {
		t.Errorf("markers not translated: %q", got)
	}
	if !strings.Contains(got, `<span style="color: #0066CC;">`) || !strings.Contains(got, "</span>") {
		t.Errorf("highlight spans missing: %q", got)
	}
}

func TestReviseRetriesOnTruncation(t *testing.T) {
	gen := &mockGenerator{responses: []string{
		"[REVISED]Better opening.[/REVISED]\n\nThe rest remains unchanged.",
		"[REVISED]Better opening.[/REVISED]\n\nHiring has slowed across the sector this quarter.",
	}}
	r := New(gen, DefaultOptions())

	got, err := r.Revise(context.Background(), article, "Improve the opening.", core.VariantUK, false)
	if err != nil {
		t.Fatalf("Revise: %v", err)
	}
	if len(gen.prompts) != 2 {
		t.Fatalf("generator called %d times, want 2", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[1], "omitted part of the article") {
		t.Errorf("retry did not use the strict prompt:\n%s", gen.prompts[1])
	}
	if strings.Contains(strings.ToLower(got), "rest remains") {
		t.Errorf("truncated response returned: %q", got)
	}
}

func TestReviseErrorLeavesCallerToKeepPrior(t *testing.T) {
	gen := &mockGenerator{err: errors.New("overloaded")}
	r := New(gen, DefaultOptions())

	if _, err := r.Revise(context.Background(), article, "Tighten it.", core.VariantUK, false); err == nil {
		t.Fatal("expected error")
	}
}

func TestReviseRejectsEmptyInstructions(t *testing.T) {
	gen := &mockGenerator{}
	r := New(gen, DefaultOptions())
	if _, err := r.Revise(context.Background(), article, "   ", core.VariantUK, false); err == nil {
		t.Fatal("expected error for empty instructions")
	}
	if len(gen.prompts) != 0 {
		t.Error("generator called for empty instructions")
	}
}

func TestRevisePromptUsesCurrentCountAsFloor(t *testing.T) {
	gen := &mockGenerator{responses: []string{"Full revised article text here."}}
	r := New(gen, DefaultOptions())

	if _, err := r.Revise(context.Background(), article, "Tweak tone.", core.VariantUK, false); err != nil {
		t.Fatalf("Revise: %v", err)
	}
	// article is 10 words after cleaning; floor 10, ceiling 110.
	if !strings.Contains(gen.prompts[0], "at least 10 words") || !strings.Contains(gen.prompts[0], "at most 110 words") {
		t.Errorf("word bounds missing from prompt:\n%s", gen.prompts[0])
	}
}

func TestRevisePromptCarriesVariantAndFormat(t *testing.T) {
	gen := &mockGenerator{responses: []string{"Full revised article text here."}}
	r := New(gen, DefaultOptions())

	if _, err := r.Revise(context.Background(), article, "Refresh the data.", core.VariantUS, true); err != nil {
		t.Fatalf("Revise: %v", err)
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "American English") {
		t.Errorf("US spelling instruction missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, `do NOT add a section headed "Conclusion"`) {
		t.Error("structure instruction missing from prompt")
	}
	if !strings.Contains(prompt, "TL;DR summary") {
		t.Error("AI-friendly format preservation missing from prompt")
	}
}

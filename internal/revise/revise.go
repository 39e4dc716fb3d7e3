// Package revise applies user-requested edits to a finished article,
// marking what changed so the web preview can highlight it.
package revise

import (
	"context"
	"fmt"
	"strings"

	"aivan/internal/compose"
	"aivan/internal/core"
	"aivan/internal/llm"
	"aivan/internal/logger"
	"aivan/internal/sanitize"
)

// highlightOpen is the display markup substituted for [REVISED] tags.
const highlightOpen = `<span style="color: #0066CC;">`

// Options configures the reviser.
type Options struct {
	Temperature float32
	MaxTokens   int32
}

// DefaultOptions returns the production revision settings.
func DefaultOptions() Options {
	return Options{Temperature: 0.7, MaxTokens: 8192}
}

// Reviser rewrites articles per user instructions.
type Reviser struct {
	generator llm.TextGenerator
	options   Options
}

// New creates a reviser around the given generator.
func New(generator llm.TextGenerator, options Options) *Reviser {
	return &Reviser{generator: generator, options: options}
}

// Revise returns the full revised article with changed sentences
// wrapped in highlight spans. The language variant and, when set, the
// AI-friendly structure carry through to the prompt so the edit cannot
// silently switch conventions. If the first response looks truncated
// it retries once with a stricter prompt and takes whatever comes
// back. On error the caller keeps the prior article; nothing here
// mutates it.
func (r *Reviser) Revise(ctx context.Context, article, instructions string, variant core.LanguageVariant, aiFriendly bool) (string, error) {
	if strings.TrimSpace(instructions) == "" {
		return "", fmt.Errorf("revision instructions are empty")
	}

	clean := sanitize.Clean(sanitize.StripHighlights(article))
	currentWords := sanitize.CountWords(clean)

	genOpts := llm.TextGenerationOptions{
		MaxTokens:   r.options.MaxTokens,
		Temperature: r.options.Temperature,
	}

	prompt := compose.BuildRevisionPrompt(clean, instructions, currentWords, variant, aiFriendly)
	revised, err := r.generator.GenerateText(ctx, prompt, genOpts)
	if err != nil {
		return "", fmt.Errorf("revision failed: %w", err)
	}

	if sanitize.IndicatesTruncation(revised) {
		logger.Warn("revision response looks truncated, retrying with strict prompt",
			"words", currentWords)
		strict := compose.BuildStrictRevisionPrompt(clean, instructions, currentWords, variant, aiFriendly)
		retried, err := r.generator.GenerateText(ctx, strict, genOpts)
		if err != nil {
			return "", fmt.Errorf("revision retry failed: %w", err)
		}
		revised = retried
	}

	if strings.TrimSpace(revised) == "" {
		return "", fmt.Errorf("empty revision response")
	}

	return TranslateMarkers(revised), nil
}

// TranslateMarkers converts [REVISED]...[/REVISED] tags to the
// highlight spans the web preview renders.
func TranslateMarkers(content string) string {
	content = strings.ReplaceAll(content, "[REVISED]", highlightOpen)
	content = strings.ReplaceAll(content, "[/REVISED]", "</span>")
	return content
}

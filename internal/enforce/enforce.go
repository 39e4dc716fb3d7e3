// Package enforce implements the word-count floor on generated
// articles: measure, request supplementary content in bounded rounds,
// and never shrink what the user already has.
package enforce

import (
	"context"
	"strings"

	"aivan/internal/compose"
	"aivan/internal/llm"
	"aivan/internal/logger"
	"aivan/internal/sanitize"
)

// safetyMargin is added to the shortfall when asking for more words,
// since models habitually under-deliver on instructed length.
const safetyMargin = 50

// Options configures the enforcer.
type Options struct {
	MaxRounds   int // expansion rounds before giving up
	Temperature float32
	MaxTokens   int32
}

// DefaultOptions returns the production enforcement settings.
func DefaultOptions() Options {
	return Options{
		MaxRounds:   2,
		Temperature: 0.7,
		MaxTokens:   8192,
	}
}

// Report describes what enforcement did to an article.
type Report struct {
	InitialCount int
	FinalCount   int
	Rounds       int
	MetTarget    bool
}

// Enforcer expands short articles until they clear the band minimum.
type Enforcer struct {
	generator llm.TextGenerator
	options   Options
}

// New creates an enforcer around the given generator.
func New(generator llm.TextGenerator, options Options) *Enforcer {
	if options.MaxRounds < 0 {
		options.MaxRounds = 0
	}
	return &Enforcer{generator: generator, options: options}
}

// EnsureMinimum returns article text of at least minWords where
// possible. The result is always at least as long as the sanitized
// input; if the rounds are exhausted or a round fails, the best text
// so far is returned with MetTarget false. Errors from the generator
// are absorbed: a short article is still a usable article.
func (e *Enforcer) EnsureMinimum(ctx context.Context, article string, minWords int) (string, Report) {
	current := sanitize.Clean(article)
	report := Report{InitialCount: sanitize.CountWords(current)}
	report.FinalCount = report.InitialCount

	count := report.InitialCount
	for round := 0; round < e.options.MaxRounds && count < minWords; round++ {
		needed := minWords - count + safetyMargin

		var prompt string
		var blocklist []string
		if round == 0 {
			prompt = compose.BuildExpansionPrompt(current, count, minWords, needed)
			blocklist = sanitize.ExpansionMetaPhrases
		} else {
			prompt = compose.BuildStrictExpansionPrompt(current, count, minWords, needed)
			blocklist = sanitize.StrictExpansionMetaPhrases
		}

		response, err := e.generator.GenerateText(ctx, prompt, llm.TextGenerationOptions{
			MaxTokens:   e.options.MaxTokens,
			Temperature: e.options.Temperature,
		})
		if err != nil {
			logger.Warn("expansion round failed, keeping current article",
				"round", round+1, "words", count, "minimum", minWords)
			break
		}
		report.Rounds = round + 1

		addition := filterAddition(response, blocklist)
		if addition == "" {
			logger.Debug("expansion round produced no usable content", "round", round+1)
			continue
		}

		current = sanitize.Clean(current + "\n\n" + addition)
		count = sanitize.CountWords(current)
	}

	report.FinalCount = count
	report.MetTarget = count >= minWords
	if !report.MetTarget {
		logger.Warn("article below word minimum after enforcement",
			"words", count, "minimum", minWords, "rounds", report.Rounds)
	}
	return current, report
}

// filterAddition strips meta-commentary from an expansion response
// using the given phrase blocklist, keeping only real body text.
func filterAddition(response string, blocklist []string) string {
	var kept []string
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kept = append(kept, line)
			continue
		}
		if sanitize.ContainsAny(trimmed, blocklist) {
			continue
		}
		if sanitize.IsSeparatorLine(trimmed) {
			continue
		}
		if sanitize.IsShortLabelLine(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

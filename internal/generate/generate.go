// Package generate orchestrates the full article pipeline: prompt
// construction, model calls through the retry gateway, word-count
// enforcement, and revisions.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aivan/internal/compose"
	"aivan/internal/core"
	"aivan/internal/enforce"
	"aivan/internal/llm"
	"aivan/internal/logger"
	"aivan/internal/revise"
	"aivan/internal/sanitize"
)

// Options configures the generation service.
type Options struct {
	Temperature    float32
	MaxTokens      int32
	RequestTimeout time.Duration // budget per operation; 0 means no limit
	Enforce        enforce.Options
}

// DefaultOptions returns production settings.
func DefaultOptions() Options {
	return Options{
		Temperature: 0.7,
		MaxTokens:   8192,
		Enforce:     enforce.DefaultOptions(),
	}
}

// Result is the outcome of one generation run.
type Result struct {
	Title    string
	Articles map[core.LanguageVariant]*core.Article
	Reports  map[core.LanguageVariant]enforce.Report
	Keywords []string
}

// Service runs the generation pipeline. All model traffic goes
// through the overload-aware gateway.
type Service struct {
	gateway  llm.TextGenerator
	enforcer *enforce.Enforcer
	reviser  *revise.Reviser
	options  Options
}

// NewService wraps the generator in a retry gateway and wires the
// enforcement and revision stages around it.
func NewService(generator llm.TextGenerator, policy llm.RetryPolicy, options Options) *Service {
	gateway := llm.NewGateway(generator, policy)
	return &Service{
		gateway:  gateway,
		enforcer: enforce.New(gateway, options.Enforce),
		reviser:  revise.New(gateway, revise.Options{Temperature: options.Temperature, MaxTokens: options.MaxTokens}),
		options:  options,
	}
}

// Generate produces articles for the requested variants, UK before US.
// A failed variant aborts the run: partial pairs confuse more than
// they help.
func (s *Service) Generate(ctx context.Context, req core.GenerationRequest, variants []core.LanguageVariant, profile core.ClientProfile) (*Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if len(variants) == 0 {
		variants = []core.LanguageVariant{core.VariantUK}
	}

	if s.options.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.RequestTimeout)
		defer cancel()
	}

	keywords := compose.MergeKeywords(profile.Keywords, req.ExtraKeywords)

	result := &Result{
		Title:    req.Topic,
		Articles: make(map[core.LanguageVariant]*core.Article),
		Reports:  make(map[core.LanguageVariant]enforce.Report),
		Keywords: keywords,
	}

	// Iterate in canonical order regardless of how the caller listed
	// the variants.
	for _, variant := range core.Variants {
		if !containsVariant(variants, variant) {
			continue
		}

		variantReq := req
		variantReq.Variant = variant
		prompt := compose.BuildArticlePrompt(variantReq, profile, keywords)

		raw, err := s.gateway.GenerateText(ctx, prompt, llm.TextGenerationOptions{
			MaxTokens:   s.options.MaxTokens,
			Temperature: s.options.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("generation failed for %s variant: %w", variant, err)
		}

		body, report := s.enforcer.EnsureMinimum(ctx, raw, req.Band.Min)
		article := core.NewArticle(body, variant)
		article.AIFriendly = req.AIFriendly
		result.Articles[variant] = &article
		result.Reports[variant] = report

		logger.Info("article generated",
			"variant", string(variant),
			"words", article.WordCount,
			"expansion_rounds", report.Rounds,
			"met_target", report.MetTarget)
	}

	return result, nil
}

// GenerateTitle produces one headline for the topic. The sequence
// rotates style hints so regenerating gives a different shape.
func (s *Service) GenerateTitle(ctx context.Context, topic string, keywords []string, sequence int) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("topic is required")
	}
	if s.options.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.RequestTimeout)
		defer cancel()
	}
	prompt := compose.BuildTitlePrompt(topic, keywords, sequence)
	title, err := s.gateway.GenerateText(ctx, prompt, llm.TextGenerationOptions{
		MaxTokens:   256,
		Temperature: 0.9,
	})
	if err != nil {
		return "", fmt.Errorf("title generation failed: %w", err)
	}

	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	if words := strings.Fields(title); len(words) > 15 {
		title = strings.Join(words[:15], " ") + "..."
	}
	return title, nil
}

// Revise applies instructions to one article and returns the new
// article with revision highlights. The article's language variant and
// AI-friendly structure are preserved through the edit. The caller
// keeps the old article on error.
func (s *Service) Revise(ctx context.Context, article *core.Article, instructions string) (*core.Article, error) {
	if article == nil || article.Body == "" {
		return nil, fmt.Errorf("no article to revise")
	}
	if s.options.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.RequestTimeout)
		defer cancel()
	}
	revised, err := s.reviser.Revise(ctx, article.Body, instructions, article.Variant, article.AIFriendly)
	if err != nil {
		return nil, err
	}
	updated := core.NewArticle(revised, article.Variant)
	updated.AIFriendly = article.AIFriendly
	updated.WordCount = sanitize.CountWords(revised)
	return &updated, nil
}

func containsVariant(variants []core.LanguageVariant, v core.LanguageVariant) bool {
	for _, candidate := range variants {
		if candidate == v {
			return true
		}
	}
	return false
}

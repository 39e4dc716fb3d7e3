package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LanguageVariant selects the regional spelling convention for an article.
type LanguageVariant string

const (
	VariantUK LanguageVariant = "UK" // British spelling ("organisation")
	VariantUS LanguageVariant = "US" // American spelling ("organization")
)

// Variants lists the supported language variants in generation order.
// UK is always generated before US within a single submission.
var Variants = []LanguageVariant{VariantUK, VariantUS}

// ParseVariant normalizes a variant string from form input.
func ParseVariant(s string) (LanguageVariant, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UK":
		return VariantUK, nil
	case "US":
		return VariantUS, nil
	}
	return "", fmt.Errorf("unknown language variant %q", s)
}

// WordBand is the target word-count range for a generated article.
// Only the lower bound is actively enforced; the upper bound is the
// instructed target and is advisory after generation.
type WordBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultBand is substituted whenever a band string cannot be parsed.
var DefaultBand = WordBand{Min: 750, Max: 1500}

// ParseWordBand parses a "min-max" range string. Any malformed input
// falls back to DefaultBand rather than failing the request.
func ParseWordBand(s string) WordBand {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return DefaultBand
	}
	min, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	max, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || min <= 0 || min > max {
		return DefaultBand
	}
	return WordBand{Min: min, Max: max}
}

// ClientProfile is the immutable per-tenant configuration loaded from a
// profile file. It is read-only input to prompt composition.
type ClientProfile struct {
	Name     string   `yaml:"name"`
	Tone     string   `yaml:"tone"`
	Keywords []string `yaml:"keywords"`
}

// GenerationRequest captures one article submission. It is built fresh
// per form submission and discarded after the articles are stored.
type GenerationRequest struct {
	Topic               string          `json:"topic"`
	Variant             LanguageVariant `json:"variant"`
	Band                WordBand        `json:"band"`
	Facts               string          `json:"facts,omitempty"`
	Quotes              string          `json:"quotes,omitempty"`
	DocumentExcerpt     string          `json:"document_excerpt,omitempty"`
	IncludeHiringImpact bool            `json:"include_hiring_impact"`
	AIFriendly          bool            `json:"ai_friendly"`
	ExtraKeywords       string          `json:"extra_keywords,omitempty"`
}

// Article is a generated article body plus its derived word count.
// Articles are replaced wholesale on every mutation (expansion or
// revision); no component ever patches a body in place, because the
// generator is only trusted to return whole documents.
type Article struct {
	Body       string          `json:"body"`
	Variant    LanguageVariant `json:"variant"`
	WordCount  int             `json:"word_count"`
	AIFriendly bool            `json:"ai_friendly,omitempty"`
}

// NewArticle builds an Article with its word count derived from the body.
func NewArticle(body string, variant LanguageVariant) Article {
	return Article{
		Body:      body,
		Variant:   variant,
		WordCount: len(strings.Fields(body)),
	}
}

// HistoryEntry is one completed submission kept in the session-scoped
// history list (capped, most recent first, volatile).
type HistoryEntry struct {
	ID         string                       `json:"id"`
	SequenceID int                          `json:"sequence_id"`
	Timestamp  time.Time                    `json:"timestamp"`
	Title      string                       `json:"title"`
	Articles   map[LanguageVariant]*Article `json:"articles"`
	Keywords   []string                     `json:"keywords"`
}

// SessionStats are the aggregate usage counters shown on the page.
type SessionStats struct {
	BlogsGenerated int `json:"blogs_generated"`
	TotalWords     int `json:"total_words"`
	FilesProcessed int `json:"files_processed"`
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aivan/internal/logger"

	"google.golang.org/genai"
)

// ErrOverloaded marks a transient upstream overload that exhausted the
// retry budget. Callers can distinguish it from hard failures.
var ErrOverloaded = errors.New("model overloaded")

// RetryPolicy controls the bounded retry loop around generation calls.
// Sleep is injectable so tests can observe delays without waiting.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       func(time.Duration)
}

// DefaultRetryPolicy matches the production backoff schedule: three
// attempts with delays of 5s and 10s between them (BaseDelay * 2^attempt).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   5 * time.Second,
		Sleep:       time.Sleep,
	}
}

// Gateway wraps a TextGenerator with overload-aware retries. Only
// transient overload errors are retried; everything else fails fast.
type Gateway struct {
	generator TextGenerator
	policy    RetryPolicy
}

// NewGateway creates a gateway around the given generator.
func NewGateway(generator TextGenerator, policy RetryPolicy) *Gateway {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Sleep == nil {
		policy.Sleep = time.Sleep
	}
	return &Gateway{generator: generator, policy: policy}
}

// GenerateText calls the underlying generator, retrying on transient
// overload with exponential backoff. On exhaustion it returns an error
// wrapping ErrOverloaded.
func (g *Gateway) GenerateText(ctx context.Context, prompt string, options TextGenerationOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.policy.MaxAttempts; attempt++ {
		text, err := g.generator.GenerateText(ctx, prompt, options)
		if err == nil {
			return text, nil
		}
		if !IsOverloaded(err) {
			return "", err
		}
		lastErr = err
		if attempt < g.policy.MaxAttempts-1 {
			delay := g.policy.BaseDelay * (1 << attempt)
			logger.Warn("model overloaded, backing off",
				"attempt", attempt+1,
				"max_attempts", g.policy.MaxAttempts,
				"delay", delay.String())
			g.policy.Sleep(delay)
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %v", ErrOverloaded, g.policy.MaxAttempts, lastErr)
}

// IsOverloaded reports whether the error represents a transient
// upstream overload worth retrying.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOverloaded) {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 503, 529:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "529") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "unavailable")
}

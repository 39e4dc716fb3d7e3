/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"os"

	"aivan/internal/config"
	"aivan/internal/generate"
	"aivan/internal/llm"
	"aivan/internal/logger"
)

// generateOptions maps configured generation knobs onto the service
// options, leaving the shipped defaults in place for unset values.
func generateOptions(cfg *config.Config) generate.Options {
	options := generate.DefaultOptions()
	if cfg.AI.Gemini.Temperature > 0 {
		options.Temperature = cfg.AI.Gemini.Temperature
		options.Enforce.Temperature = cfg.AI.Gemini.Temperature
	}
	if cfg.AI.Gemini.MaxTokens > 0 {
		options.MaxTokens = cfg.AI.Gemini.MaxTokens
		options.Enforce.MaxTokens = cfg.AI.Gemini.MaxTokens
	}
	if cfg.Generate.ExpansionRounds > 0 {
		options.Enforce.MaxRounds = cfg.Generate.ExpansionRounds
	}
	options.RequestTimeout = cfg.GeminiTimeout()
	return options
}

// retryPolicy maps the configured retry knobs onto the gateway policy.
func retryPolicy(cfg *config.Config) llm.RetryPolicy {
	policy := llm.DefaultRetryPolicy()
	if cfg.Generate.MaxRetries > 0 {
		policy.MaxAttempts = cfg.Generate.MaxRetries
	}
	policy.BaseDelay = cfg.RetryBaseDelay()
	return policy
}

// defaultLogo loads the configured export logo, if any. A missing or
// unreadable file is not fatal; exports simply go out without a logo.
func defaultLogo(cfg *config.Config) []byte {
	if cfg.Output.LogoPath == "" {
		return nil
	}
	data, err := os.ReadFile(cfg.Output.LogoPath)
	if err != nil {
		logger.Warn("Configured logo unavailable, exporting without it",
			"path", cfg.Output.LogoPath, "error", err.Error())
		return nil
	}
	return data
}

// applyLogging reconfigures the logger from the loaded config.
func applyLogging(cfg *config.Config) {
	level := cfg.Logging.Level
	if cfg.App.Debug {
		level = "debug"
	}
	logger.Configure(level, cfg.Logging.Format)
}

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
	"context"
	"fmt"
	"os"
	"strings"

	"aivan/internal/config"
	"aivan/internal/core"
	"aivan/internal/extract"
	"aivan/internal/generate"
	"aivan/internal/llm"
	"aivan/internal/logger"
	"aivan/internal/profile"
	"aivan/internal/render"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a blog article from the command line",
	Long: `Generate one or both language versions of a blog article and
export them as Word documents, without starting the web interface.

Examples:
  aivan generate "How pay transparency is reshaping recruitment"
  aivan generate --variants UK,US --client acme "Counter-offers in 2026"
  aivan generate --document brief.pdf --words 900-1800 "Skills-based hiring"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := args[0]
		variants, _ := cmd.Flags().GetString("variants")
		client, _ := cmd.Flags().GetString("client")
		words, _ := cmd.Flags().GetString("words")
		facts, _ := cmd.Flags().GetString("facts")
		quotes, _ := cmd.Flags().GetString("quotes")
		document, _ := cmd.Flags().GetString("document")
		title, _ := cmd.Flags().GetString("title")

		if err := runGenerate(topic, variants, client, words, facts, quotes, document, title); err != nil {
			logger.Error("Failed to generate article", err)
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("variants", "UK", "language versions to generate: UK, US, or UK,US")
	generateCmd.Flags().String("client", "", "client profile name (default from config)")
	generateCmd.Flags().String("words", "", "word range, e.g. 750-1500 (default from config)")
	generateCmd.Flags().String("facts", "", "facts the article must include")
	generateCmd.Flags().String("quotes", "", "quotes the article must include")
	generateCmd.Flags().String("document", "", "background document to extract context from")
	generateCmd.Flags().String("title", "", "article title (defaults to the topic)")
}

func runGenerate(topic, variantsFlag, clientName, words, facts, quotes, document, title string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var variants []core.LanguageVariant
	for _, raw := range strings.Split(variantsFlag, ",") {
		v, err := core.ParseVariant(raw)
		if err != nil {
			return err
		}
		variants = append(variants, v)
	}

	if clientName == "" {
		clientName = cfg.Clients.DefaultProfile
	}
	clientProfile := core.ClientProfile{Name: clientName}
	if p, err := profile.Load(cfg.Clients.Directory, clientName); err == nil {
		clientProfile = *p
	} else {
		logger.Warn("Client profile unavailable, using bare profile", "client", clientName, "error", err.Error())
	}

	var documentText string
	if document != "" {
		data, err := os.ReadFile(document)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		documentText, err = extract.FromUpload(document, data)
		if err != nil {
			return fmt.Errorf("failed to extract document text: %w", err)
		}
		fmt.Printf("Extracted %d characters from %s\n", len(documentText), document)
	}

	if words == "" {
		words = cfg.Generate.DefaultWordRange
	}

	applyLogging(cfg)

	client, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	defer client.Close()

	service := generate.NewService(client, retryPolicy(cfg), generateOptions(cfg))

	req := core.GenerationRequest{
		Topic:           topic,
		Band:            core.ParseWordBand(words),
		Facts:           facts,
		Quotes:          quotes,
		DocumentExcerpt: documentText,
	}

	result, err := service.Generate(context.Background(), req, variants, clientProfile)
	if err != nil {
		return err
	}

	if title == "" {
		title = topic
	}
	exports, actualTitle, err := render.Export(cfg.Output.Directory, title, result.Articles, result.Keywords, defaultLogo(cfg))
	if err != nil {
		return fmt.Errorf("failed to export documents: %w", err)
	}

	fmt.Printf("Title: %s\n", actualTitle)
	for _, exported := range exports {
		article := result.Articles[exported.Variant]
		fmt.Printf("%s version: %d words -> %s\n", exported.Variant, article.WordCount, exported.Path)
	}
	return nil
}

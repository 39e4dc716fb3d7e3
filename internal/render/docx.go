package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"aivan/internal/core"
	"aivan/internal/sanitize"

	"github.com/fumiama/go-docx"
)

// Half-point font sizes for document headings.
const (
	titleSize    = "36"
	heading1Size = "32"
	heading2Size = "28"
	heading3Size = "26"
)

// ExportResult describes one written document.
type ExportResult struct {
	Variant  core.LanguageVariant
	Filename string
	Path     string
}

// SafeTitle reduces a title to filesystem-safe form: alphanumerics,
// dashes, and underscores, with spaces collapsed to underscores.
func SafeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	safe = strings.Join(strings.Fields(safe), "_")
	if safe == "" {
		safe = "article"
	}
	return safe
}

// ExportFilename builds the canonical export name:
// <safe_title>_<VARIANT>_<timestamp>.docx
func ExportFilename(title string, variant core.LanguageVariant, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.docx", SafeTitle(title), variant, at.Format("20060102_150405"))
}

// WriteDocx renders cleaned article content as a Word document:
// optional centered logo, title, parsed body blocks, and a metadata
// footer with word count and keywords.
func WriteDocx(w io.Writer, title, content string, keywords []string, logo []byte) error {
	doc := docx.New().WithDefaultTheme()

	if len(logo) > 0 {
		para := doc.AddParagraph().Justification("center")
		if _, err := para.AddInlineDrawing(logo); err != nil {
			return fmt.Errorf("failed to embed logo: %w", err)
		}
		doc.AddParagraph()
	}

	doc.AddParagraph().AddText(title).Size(titleSize).Bold()
	doc.AddParagraph()

	for _, block := range ParseBlocks(content) {
		switch block.Kind {
		case KindHeading:
			doc.AddParagraph().AddText(block.Text).Size(headingSize(block.Level)).Bold()
		case KindParagraph:
			para := doc.AddParagraph()
			for _, seg := range SplitBold(block.Text) {
				run := para.AddText(seg.Text)
				if seg.Bold {
					run.Bold()
				}
			}
		}
	}

	doc.AddParagraph()
	doc.AddParagraph().AddText("---")
	doc.AddParagraph().AddText(fmt.Sprintf("Word Count: %d", len(strings.Fields(content))))
	if len(keywords) > 0 {
		doc.AddParagraph().AddText(fmt.Sprintf("Keywords: %s", strings.Join(keywords, ", ")))
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func headingSize(level int) string {
	switch level {
	case 1:
		return heading1Size
	case 3:
		return heading3Size
	default:
		return heading2Size
	}
}

// Export writes one document per article variant into dir and returns
// the written files plus the effective title. A generated "TITLE:"
// line inside an article overrides the passed title. Content is
// cleaned for export first, so highlight spans and meta lines never
// reach the document.
func Export(dir, title string, articles map[core.LanguageVariant]*core.Article, keywords []string, logo []byte) ([]ExportResult, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create export directory: %w", err)
	}

	now := time.Now()
	actualTitle := title
	var results []ExportResult

	for _, variant := range core.Variants {
		article, ok := articles[variant]
		if !ok || article == nil || article.Body == "" {
			continue
		}

		content := sanitize.CleanForExport(article.Body)
		if generated, rest := ExtractTitle(content); generated != "" {
			actualTitle = generated
			content = rest
		}

		filename := ExportFilename(actualTitle, variant, now)
		path := filepath.Join(dir, filename)
		f, err := os.Create(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := WriteDocx(f, actualTitle, content, keywords, logo); err != nil {
			f.Close()
			return nil, "", err
		}
		if err := f.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to close %s: %w", path, err)
		}

		results = append(results, ExportResult{Variant: variant, Filename: filename, Path: path})
	}

	return results, actualTitle, nil
}

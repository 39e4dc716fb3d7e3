// Package render converts generated article markup into structured
// blocks and writes them out as Word documents.
package render

import "strings"

// BlockKind distinguishes headings from body paragraphs.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
)

// Block is one structural unit of an article.
type Block struct {
	Kind  BlockKind
	Text  string
	Level int // heading level 1-3; 0 for paragraphs
}

// Segment is a run of paragraph text with uniform bold styling.
type Segment struct {
	Text string
	Bold bool
}

// ExtractTitle pulls a leading "TITLE:" line out of article content,
// returning the title (or "" if absent) and the remaining content.
func ExtractTitle(content string) (string, string) {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "TITLE:") {
		title := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[0]), "TITLE:"))
		return title, strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return "", content
}

// ParseBlocks splits article markup into headings and paragraphs.
// Headings are lines fully wrapped in ** markers (the generator's
// instructed style) or prefixed with #/##/###; consecutive text lines
// merge into one paragraph, broken by blank lines.
func ParseBlocks(content string) []Block {
	var blocks []Block
	var paragraph []string

	flush := func() {
		if len(paragraph) > 0 {
			blocks = append(blocks, Block{Kind: KindParagraph, Text: strings.Join(paragraph, " ")})
			paragraph = nil
		}
	}

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(rawLine)

		if strings.HasPrefix(line, "TITLE:") {
			continue
		}
		if line == "" {
			flush()
			continue
		}

		if isBoldHeading(line) {
			flush()
			text := strings.TrimSpace(strings.Trim(line, "*"))
			text, level := splitHeadingLevel(text, 2)
			blocks = append(blocks, Block{Kind: KindHeading, Text: text, Level: level})
			continue
		}
		if text, level, ok := bareHeading(line); ok {
			flush()
			blocks = append(blocks, Block{Kind: KindHeading, Text: text, Level: level})
			continue
		}

		paragraph = append(paragraph, line)
	}
	flush()

	return blocks
}

// SplitBold breaks paragraph text on ** markers into alternating
// plain and bold segments. Unbalanced markers degrade gracefully: the
// trailing run stays plain.
func SplitBold(text string) []Segment {
	parts := strings.Split(text, "**")
	var segments []Segment
	for i, part := range parts {
		if part == "" {
			continue
		}
		bold := i%2 == 1 && i != len(parts)-1
		segments = append(segments, Segment{Text: part, Bold: bold})
	}
	return segments
}

// isBoldHeading reports whether a line is fully wrapped in ** markers
// with no inner emphasis.
func isBoldHeading(line string) bool {
	if !strings.HasPrefix(line, "**") || !strings.HasSuffix(line, "**") || len(line) < 5 {
		return false
	}
	inner := strings.TrimSpace(line[2 : len(line)-2])
	return inner != "" && !strings.HasPrefix(inner, "*") && !strings.Contains(inner, "**")
}

// splitHeadingLevel strips a leading #-prefix from heading text,
// mapping it to a level; defaultLevel applies when no prefix exists.
func splitHeadingLevel(text string, defaultLevel int) (string, int) {
	switch {
	case strings.HasPrefix(text, "### "):
		return strings.TrimPrefix(text, "### "), 3
	case strings.HasPrefix(text, "## "):
		return strings.TrimPrefix(text, "## "), 2
	case strings.HasPrefix(text, "# "):
		return strings.TrimPrefix(text, "# "), 1
	}
	return text, defaultLevel
}

// bareHeading recognizes #-style headings without bold markers.
func bareHeading(line string) (string, int, bool) {
	switch {
	case strings.HasPrefix(line, "### "):
		return strings.TrimPrefix(line, "### "), 3, true
	case strings.HasPrefix(line, "## "):
		return strings.TrimPrefix(line, "## "), 2, true
	case strings.HasPrefix(line, "# "):
		return strings.TrimPrefix(line, "# "), 1, true
	}
	return "", 0, false
}

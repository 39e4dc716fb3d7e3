package sanitize

import (
	"regexp"
	"strings"
)

// The phrase lists below are heuristic blocklists of generator
// meta-commentary observed in real output. They are exported so the
// expansion and revision flows can share them and so they can be
// extended without touching control flow. The lists are incomplete by
// construction; missed meta-commentary is an accepted limitation.

// MetaLinePhrases marks lines the generator produced about its own
// output (word-count self-reports, expansion labels). Matching is
// case-insensitive substring.
var MetaLinePhrases = []string{
	"word count:",
	"total words:",
	"[total word",
	"additional words",
	"---expanded",
	"here's an additional",
	"to expand the article",
	"words to expand",
}

// SeparatorLines are artifact lines dropped when they make up the
// whole line (after trimming).
var SeparatorLines = []string{
	"---",
	"___",
	"---EXPANDED CONTENT---",
}

// ExpansionMetaPhrases marks meta-commentary in supplementary content
// returned by an expansion round ("here is more content...", labels
// describing where text should go).
var ExpansionMetaPhrases = []string{
	"additional paragraph",
	"additional content",
	"here's",
	"here is",
	"to expand",
	"this adds",
	"adding to",
	"section:",
	"i'll add",
	"let me add",
	"here are",
	"to the section",
	"building on",
	"furthermore to",
	"expanding on the",
}

// StrictExpansionMetaPhrases is the tighter blocklist applied to the
// second, stricter expansion round.
var StrictExpansionMetaPhrases = []string{
	"additional",
	"here",
	"paragraph",
	"section",
	"adding",
	"to expand",
	"furthermore to",
	"building on",
}

// TruncationPhrases indicate the generator elided content instead of
// returning the whole article.
var TruncationPhrases = []string{
	"rest remains",
	"continue with",
	"remaining sections",
	"rest of the article",
	"continues unchanged",
	"[remaining",
	"would continue",
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// ContainsAny reports whether line contains any of the phrases,
// case-insensitively.
func ContainsAny(line string, phrases []string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// IsSeparatorLine reports whether the trimmed line is a pure separator
// artifact.
func IsSeparatorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, sep := range SeparatorLines {
		if trimmed == sep {
			return true
		}
	}
	return false
}

// IsShortLabelLine reports whether a line looks like a stray content
// label: short and ending with a colon.
func IsShortLabelLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasSuffix(trimmed, ":") && len(trimmed) < 50
}

// IndicatesTruncation reports whether the text contains any phrase
// suggesting the generator elided part of the article.
func IndicatesTruncation(text string) bool {
	return ContainsAny(text, TruncationPhrases)
}

// Clean removes meta-commentary lines and separator artifacts from
// article text and collapses the resulting blank runs. It is
// idempotent: Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if ContainsAny(line, MetaLinePhrases) {
			continue
		}
		if IsSeparatorLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return collapseBlankRuns(kept)
}

// StripHighlights removes the display-only highlight annotation (and
// any other inline HTML) so the text can be exported as plain content.
func StripHighlights(text string) string {
	return htmlTagPattern.ReplaceAllString(text, "")
}

// CleanForExport strips highlight annotations and then applies Clean,
// producing the plain text written to an exported document.
func CleanForExport(text string) string {
	return Clean(StripHighlights(text))
}

// CountWords measures the effective article length: highlight markup
// and meta-commentary do not count toward the word total.
func CountWords(text string) int {
	return len(strings.Fields(CleanForExport(text)))
}

// collapseBlankRuns joins lines, reducing any run of blank lines to a
// single blank line, and trims the result.
func collapseBlankRuns(lines []string) string {
	var out []string
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

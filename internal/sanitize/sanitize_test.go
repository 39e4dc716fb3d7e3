package sanitize

import (
	"strings"
	"testing"
)

func TestCleanRemovesMetaLines(t *testing.T) {
	input := strings.Join([]string{
		"The remote hiring market shifted again this year.",
		"",
		"Word Count: 812",
		"",
		"Teams that adapted early kept their pipelines full.",
		"---",
		"[Total word count: 812]",
		"More analysis follows in the next section.",
	}, "\n")

	got := Clean(input)

	if strings.Contains(strings.ToLower(got), "word count") {
		t.Errorf("word count report survived cleaning: %q", got)
	}
	if strings.Contains(got, "---") {
		t.Errorf("separator survived cleaning: %q", got)
	}
	if !strings.Contains(got, "pipelines full") {
		t.Errorf("content line removed: %q", got)
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"First paragraph.\n\n\n\nSecond paragraph.\nTotal words: 400\n___\nThird.",
		"",
		"   \n\n   ",
		"Plain text with no artifacts at all.",
		"---EXPANDED CONTENT---\nHere's an additional paragraph marker.\nReal sentence.",
	}
	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent:\nonce:  %q\ntwice: %q", once, twice)
		}
	}
}

func TestCleanCollapsesBlankRuns(t *testing.T) {
	got := Clean("One.\n\n\n\nTwo.")
	want := "One.\n\nTwo."
	if got != want {
		t.Errorf("Clean = %q, want %q", got, want)
	}
}

func TestStripHighlights(t *testing.T) {
	input := `Hiring slowed <span style="color: #0066CC;">but retention improved sharply</span> in Q3.`
	got := StripHighlights(input)
	want := "Hiring slowed but retention improved sharply in Q3."
	if got != want {
		t.Errorf("StripHighlights = %q, want %q", got, want)
	}
}

func TestCountWordsIgnoresMarkupAndMeta(t *testing.T) {
	input := "One two <b>three</b> four.\nWord count: 999"
	if got := CountWords(input); got != 4 {
		t.Errorf("CountWords = %d, want 4", got)
	}
}

func TestIsShortLabelLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"Additional content for section 2:", true},
		{"Introduction:", true},
		{"This is a long sentence that happens to end with a colon because it introduces a list:", false},
		{"No colon here", false},
	}
	for _, tc := range cases {
		if got := IsShortLabelLine(tc.line); got != tc.want {
			t.Errorf("IsShortLabelLine(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestIndicatesTruncation(t *testing.T) {
	if !IndicatesTruncation("The opening improves.\n\nThe rest remains unchanged.") {
		t.Error("expected truncation phrase to be detected")
	}
	if IndicatesTruncation("A complete article with every section written out in full.") {
		t.Error("false positive on complete article")
	}
}

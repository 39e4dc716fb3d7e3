package compose

import (
	"fmt"
	"strings"

	"aivan/internal/core"
)

// maxExcerptChars bounds how much uploaded-document text is carried
// into the prompt.
const maxExcerptChars = 500

// titleStyleHints rotate per generated title so repeated requests for
// the same topic do not converge on one headline shape.
var titleStyleHints = []string{
	"Make it punchy and direct.",
	"Pose it as a question the reader wants answered.",
	"Lead with the concrete benefit to the reader.",
}

// MergeKeywords combines profile keywords with user-entered extras,
// deduplicating case-insensitively. Base keywords keep their order and
// casing; surviving extras are appended lowercased.
func MergeKeywords(base []string, extra string) []string {
	merged := make([]string, 0, len(base))
	seen := make(map[string]bool)
	add := func(kw string) {
		if kw == "" {
			return
		}
		key := strings.ToLower(kw)
		if seen[key] {
			return
		}
		seen[key] = true
		merged = append(merged, kw)
	}
	for _, kw := range base {
		add(strings.TrimSpace(kw))
	}
	for _, kw := range strings.Split(extra, ",") {
		add(strings.ToLower(strings.TrimSpace(kw)))
	}
	return merged
}

// spellingNote returns the language-variant instruction embedded in
// every article prompt.
func spellingNote(variant core.LanguageVariant) string {
	if variant == core.VariantUK {
		return "Use British English spelling and conventions throughout (organise, colour, whilst, programme)."
	}
	return "Use American English spelling and conventions throughout (organize, color, while, program)."
}

// BuildArticlePrompt creates the initial generation prompt for one
// language variant. The instructed target is the band maximum: models
// under-deliver on length, and the floor is enforced downstream.
func BuildArticlePrompt(req core.GenerationRequest, profile core.ClientProfile, keywords []string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are a professional blog writer for %s.\n", profile.Name))
	if profile.Tone != "" {
		prompt.WriteString(fmt.Sprintf("Writing tone: %s\n", profile.Tone))
	}
	prompt.WriteString("\n")

	if req.AIFriendly {
		writeAIFriendlyBody(&prompt, req)
	} else {
		writeStandardBody(&prompt, req)
	}

	prompt.WriteString(fmt.Sprintf("\nAim for approximately %d words. The article must be at least %d words long.\n", req.Band.Max, req.Band.Min))
	prompt.WriteString(spellingNote(req.Variant))
	prompt.WriteString("\n")

	if req.Facts != "" {
		prompt.WriteString("\nIncorporate these facts accurately:\n")
		prompt.WriteString(req.Facts)
		prompt.WriteString("\n")
	}
	if req.Quotes != "" {
		prompt.WriteString("\nInclude these quotes verbatim, attributed as given:\n")
		prompt.WriteString(req.Quotes)
		prompt.WriteString("\n")
	}
	if len(keywords) > 0 {
		prompt.WriteString(fmt.Sprintf("\nWork these keywords in naturally: %s\n", strings.Join(keywords, ", ")))
	}
	if excerpt := Excerpt(req.DocumentExcerpt); excerpt != "" {
		prompt.WriteString("\nBackground material from an uploaded document:\n")
		prompt.WriteString(excerpt)
		prompt.WriteString("\n")
	}
	if req.IncludeHiringImpact {
		prompt.WriteString("\nInclude a section on what this means for hiring and recruitment.\n")
	}

	prompt.WriteString("\nMark section headings with double asterisks, for example **The State of the Market**.\n")
	prompt.WriteString("Return only the article text. Do not include word counts, notes about the article, or any other meta-commentary.\n")

	return prompt.String()
}

func writeStandardBody(prompt *strings.Builder, req core.GenerationRequest) {
	prompt.WriteString(fmt.Sprintf("Write an engaging, well-structured blog article about: %s\n\n", req.Topic))
	prompt.WriteString("Structure the article as ordered sections:\n")
	prompt.WriteString("- An opening section giving a comprehensive overview with context and a preview of the main points. Give it a descriptive, topic-specific heading; do NOT use the word \"Introduction\" as a heading\n")
	prompt.WriteString("- A first main section: a deep dive into the first key aspect with examples and analysis\n")
	prompt.WriteString("- A second main section: an exploration of the second aspect with case studies and data\n")
	prompt.WriteString("- A third main section: a discussion of challenges, opportunities, and solutions\n")
	prompt.WriteString("- A forward-looking closing section with future outlook and actionable takeaways. Do NOT head it \"Conclusion\" or \"Summary\"\n\n")
	prompt.WriteString("Write detailed, expansive paragraphs (100-150 words each), with specific examples, statistics, and expert insights throughout, and use transitions to elaborate on every point.\n")
}

func writeAIFriendlyBody(prompt *strings.Builder, req core.GenerationRequest) {
	prompt.WriteString(fmt.Sprintf("Write a blog article about: %s\n\n", req.Topic))
	prompt.WriteString("Optimise the article for AI search and answer engines:\n")
	prompt.WriteString("- Use question-style section headings (for example **What is X?**) and answer each question directly in the first one or two sentences of its section\n")
	prompt.WriteString("- Start major sections with **Key takeaway:** in bold\n")
	prompt.WriteString("- Include one numbered step-by-step how-to process somewhere in the article\n")
	prompt.WriteString("- Keep paragraphs short (2-3 sentences) and self-contained\n")
	prompt.WriteString("- Prefer concrete, citable statements over vague claims\n")
	prompt.WriteString("- End with a **Frequently Asked Questions** section containing exactly 5 Q&A pairs\n")
	prompt.WriteString("- Finish with a **TL;DR Summary** of 3-4 bullet points\n")
}

// BuildExpansionPrompt asks for supplementary paragraphs when the
// article came up short. neededWords already includes the safety
// margin added by the caller.
func BuildExpansionPrompt(article string, currentWords, minWords, neededWords int) string {
	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("The following article is %d words but needs to be at least %d words.\n\n", currentWords, minWords))
	prompt.WriteString(article)
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("Write approximately %d additional words of new content that deepens the existing sections.\n", neededWords))
	prompt.WriteString("Match the article's tone and spelling conventions.\n")
	prompt.WriteString("Return ONLY the new paragraphs. Do not repeat existing text, do not describe what you are adding, and do not include headings or labels.\n")
	return prompt.String()
}

// BuildStrictExpansionPrompt is the second-round variant with tighter
// output constraints, used after the first round returned
// meta-commentary or too little content.
func BuildStrictExpansionPrompt(article string, currentWords, minWords, neededWords int) string {
	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("This article is %d words and must reach %d words.\n\n", currentWords, minWords))
	prompt.WriteString(article)
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("Write %d more words of body text continuing the article.\n", neededWords))
	prompt.WriteString("Output rules, all mandatory:\n")
	prompt.WriteString("- Body paragraphs only\n")
	prompt.WriteString("- No introduction, no conclusion about the additions\n")
	prompt.WriteString("- No labels, no headings, no lists of what was added\n")
	prompt.WriteString("- Start mid-flow as if the article simply continued\n")
	return prompt.String()
}

// BuildRevisionPrompt asks for a full rewritten article with changed
// sentences wrapped in [REVISED] markers. The word floor is the
// current count; the ceiling allows modest growth only. The original
// language variant and structural conventions must survive the edit.
func BuildRevisionPrompt(article, instructions string, currentWords int, variant core.LanguageVariant, aiFriendly bool) string {
	var prompt strings.Builder
	prompt.WriteString("Revise the following article according to the instructions.\n\n")
	prompt.WriteString("ARTICLE:\n")
	prompt.WriteString(article)
	prompt.WriteString("\n\nINSTRUCTIONS:\n")
	prompt.WriteString(instructions)
	prompt.WriteString("\n\nRules:\n")
	prompt.WriteString("- Return the COMPLETE article, every section written out in full\n")
	prompt.WriteString("- Never summarise, elide, or refer back to unchanged sections\n")
	prompt.WriteString(fmt.Sprintf("- Keep the article at least %d words and at most %d words\n", currentWords, currentWords+100))
	prompt.WriteString("- Wrap every sentence you changed or added in [REVISED]...[/REVISED] markers\n")
	prompt.WriteString("- Leave unchanged sentences exactly as they are, without markers\n")
	prompt.WriteString("- " + spellingNote(variant) + "\n")
	prompt.WriteString("- Keep the existing section structure and ** bold headings; do NOT add a section headed \"Conclusion\"\n")
	if aiFriendly {
		prompt.WriteString("- Preserve the AI-friendly format: question-based headings, short paragraphs (2-3 sentences), the FAQ section, and the TL;DR summary\n")
	}
	return prompt.String()
}

// BuildStrictRevisionPrompt is the retry variant used when the first
// revision response appeared truncated.
func BuildStrictRevisionPrompt(article, instructions string, currentWords int, variant core.LanguageVariant, aiFriendly bool) string {
	var prompt strings.Builder
	prompt.WriteString(BuildRevisionPrompt(article, instructions, currentWords, variant, aiFriendly))
	prompt.WriteString("\nCRITICAL: your previous response omitted part of the article. ")
	prompt.WriteString("Write out EVERY paragraph in full, including the ones you did not change. ")
	prompt.WriteString("Phrases like \"the rest remains unchanged\" are forbidden.\n")
	return prompt.String()
}

// BuildTitlePrompt creates a headline prompt for the given topic. The
// sequence number rotates the style hint so consecutive titles vary.
func BuildTitlePrompt(topic string, keywords []string, sequence int) string {
	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Write one compelling blog headline for an article about: %s\n", topic))
	if len(keywords) > 0 {
		prompt.WriteString(fmt.Sprintf("Reflect these themes where natural: %s\n", strings.Join(keywords, ", ")))
	}
	hint := titleStyleHints[((sequence%len(titleStyleHints))+len(titleStyleHints))%len(titleStyleHints)]
	prompt.WriteString(hint)
	prompt.WriteString("\nReturn only the headline text, under 80 characters, no quotes and no alternatives.\n")
	return prompt.String()
}

// Excerpt trims document text to the excerpt budget, cutting on a
// rune boundary.
func Excerpt(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxExcerptChars {
		return text
	}
	return string(runes[:maxExcerptChars]) + "..."
}

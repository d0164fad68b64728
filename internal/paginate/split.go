package paginate

import "strings"

// WordCount is the page size measure.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// splitText breaks text into parts of about targetWords words, at paragraph
// boundaries first and sentence boundaries for oversized paragraphs. Fenced
// code and display math blocks are never split.
func splitText(text string, targetWords int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if WordCount(text) <= targetWords {
		return []string{text}
	}

	var result []string
	var current []string
	currentWords := 0
	flush := func() {
		if len(current) > 0 {
			result = append(result, strings.Join(current, "\n\n"))
			current = current[:0]
			currentWords = 0
		}
	}

	for _, para := range splitByParagraphs(text) {
		paraWords := WordCount(para)

		// If a single paragraph exceeds the target, split it further.
		if paraWords > targetWords && !isBlock(para) {
			flush()
			result = append(result, splitBySentences(para, targetWords)...)
			continue
		}

		if currentWords+paraWords > targetWords && currentWords > 0 {
			flush()
		}
		current = append(current, para)
		currentWords += paraWords
	}
	flush()

	return result
}

// splitByParagraphs splits on blank lines, keeping fenced blocks whole.
func splitByParagraphs(text string) []string {
	var result []string
	var open []string
	fence := ""

	for _, p := range strings.Split(text, "\n\n") {
		if fence != "" {
			open = append(open, p)
			if closesFence(p, fence) {
				result = append(result, strings.Join(open, "\n\n"))
				open, fence = nil, ""
			}
			continue
		}
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if f := openFence(p); f != "" {
			open, fence = []string{p}, f
			continue
		}
		result = append(result, p)
	}
	if len(open) > 0 {
		result = append(result, strings.Join(open, "\n\n"))
	}
	return result
}

// openFence returns the fence marker when p opens a block it does not also
// close.
func openFence(p string) string {
	for _, f := range []string{"```", "~~~", "$$"} {
		if strings.HasPrefix(p, f) && strings.Count(p, f)%2 == 1 {
			return f
		}
	}
	return ""
}

func closesFence(p, fence string) bool {
	return strings.Count(p, fence)%2 == 1
}

func isBlock(p string) bool {
	return strings.HasPrefix(p, "```") || strings.HasPrefix(p, "~~~") || strings.HasPrefix(p, "$$")
}

// splitBySentences breaks a large paragraph into sentence-based parts.
func splitBySentences(text string, targetWords int) []string {
	var result []string
	var current strings.Builder
	currentWords := 0

	for _, sent := range splitSentences(text) {
		sentWords := WordCount(sent)

		if currentWords+sentWords > targetWords && currentWords > 0 {
			result = append(result, current.String())
			current.Reset()
			currentWords = 0
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentWords += sentWords
	}

	if currentWords > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

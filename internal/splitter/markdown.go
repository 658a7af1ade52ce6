package splitter

import "strings"

// splitMarkdown splits markdown content into one chunk per section. Every
// heading line starts a new section regardless of depth; nested headings do
// not nest sections. That flat rule is a recorded design decision, not an
// oversight.
func splitMarkdown(content, language string) []Chunk {
	if strings.ToLower(language) != "markdown" {
		return nil
	}

	lines := strings.Split(content, "\n")
	var chunks []Chunk

	var section []string
	title := "Introduction"
	start := 0

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			if len(section) > 0 {
				chunks = append(chunks, Chunk{
					Content:      strings.Join(section, "\n"),
					Kind:         KindMarkdownSection,
					SectionTitle: title,
					StartLine:    start,
					EndLine:      i - 1,
					Language:     "markdown",
				})
			}
			title = strings.TrimLeft(strings.TrimSpace(line), "# ")
			section = []string{line}
			start = i
			continue
		}
		section = append(section, line)
	}

	if len(section) > 0 {
		chunks = append(chunks, Chunk{
			Content:      strings.Join(section, "\n"),
			Kind:         KindMarkdownSection,
			SectionTitle: title,
			StartLine:    start,
			EndLine:      len(lines) - 1,
			Language:     "markdown",
		})
	}
	return chunks
}

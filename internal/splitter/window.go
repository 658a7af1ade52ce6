package splitter

import "strings"

// splitWindow is the unconditional fallback: a line-based sliding window
// bounded by chunkSize characters. When a window fills, the next one is
// seeded with its trailing lines so neighbouring chunks overlap. The seed
// length scales the configured character overlap against the window's line
// count; it approximates overlap in characters rather than measuring it
// exactly.
func (s *Splitter) splitWindow(content, language string) []Chunk {
	lines := strings.Split(content, "\n")
	var chunks []Chunk

	var window []string
	size := 0

	for i, line := range lines {
		lineSize := len(line)

		if size+lineSize > s.chunkSize && len(window) > 0 {
			chunks = append(chunks, Chunk{
				Content:   strings.Join(window, "\n"),
				Kind:      KindTextWindow,
				StartLine: i - len(window),
				EndLine:   i - 1,
			})

			overlap := len(window) * s.chunkOverlap / s.chunkSize
			if overlap < 1 {
				overlap = 1
			}
			if overlap > len(window) {
				overlap = len(window)
			}
			window = append([]string(nil), window[len(window)-overlap:]...)
			size = 0
			for _, kept := range window {
				size += len(kept)
			}
		}

		window = append(window, line)
		size += lineSize
	}

	if len(window) > 0 {
		chunks = append(chunks, Chunk{
			Content:   strings.Join(window, "\n"),
			Kind:      KindTextWindow,
			StartLine: len(lines) - len(window),
			EndLine:   len(lines) - 1,
		})
	}
	return chunks
}

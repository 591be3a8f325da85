package semsearch

import "strings"

// chunkText splits text into overlapping windows of at most chunkSize
// characters. A window that would cut mid-sentence is shortened to the last
// '.' or '\n' inside it, but only when that boundary lies past the window's
// midpoint; the next window starts overlap characters before the previous
// one ended.
func chunkText(text string, chunkSize, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + chunkSize
		window := end
		if window > len(text) {
			window = len(text)
		}
		chunk := text[start:window]

		if end < len(text) {
			lastPeriod := strings.LastIndexByte(chunk, '.')
			lastNewline := strings.LastIndexByte(chunk, '\n')
			breakPoint := max(lastPeriod, lastNewline)

			if breakPoint > chunkSize/2 {
				chunk = text[start : start+breakPoint+1]
				end = start + breakPoint + 1
			}
		}

		chunks = append(chunks, strings.TrimSpace(chunk))

		// A sentence boundary can shrink the window below the overlap; never
		// let the next window start at or before the current one.
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

package semsearch

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestChunkText(t *testing.T) {
	t.Run("short text returns single chunk unchanged", func(t *testing.T) {
		chunks := chunkText("  a short note  ", 1000, 200)
		gt.A(t, chunks).Length(1)
		gt.V(t, chunks[0]).Equal("  a short note  ")
	})

	t.Run("breaks at sentence boundary past midpoint", func(t *testing.T) {
		text := strings.Repeat("a", 80) + ". " + strings.Repeat("b", 58)
		chunks := chunkText(text, 100, 20)

		gt.A(t, chunks).Length(2)
		gt.V(t, chunks[0]).Equal(strings.Repeat("a", 80) + ".")
		gt.V(t, chunks[1]).Equal(strings.Repeat("a", 19) + ". " + strings.Repeat("b", 58))
	})

	t.Run("ignores boundary before midpoint", func(t *testing.T) {
		text := strings.Repeat("a", 30) + "." + strings.Repeat("b", 100)
		chunks := chunkText(text, 100, 20)

		gt.V(t, len(chunks[0])).Equal(100)
	})

	t.Run("overlap beyond boundary offset still advances", func(t *testing.T) {
		// The first window breaks right past its midpoint; stepping back by
		// the full overlap would land before the start of the text.
		text := strings.Repeat("a", 501) + "." + strings.Repeat("b", 1000)
		chunks := chunkText(text, 1000, 800)

		gt.A(t, chunks).Length(6)
		gt.V(t, chunks[0]).Equal(strings.Repeat("a", 501) + ".")
		gt.V(t, chunks[1]).Equal(strings.Repeat("b", 1000))
		gt.V(t, chunks[5]).Equal(strings.Repeat("b", 200))
	})

	t.Run("windows overlap without boundaries", func(t *testing.T) {
		text := strings.Repeat("x", 250)
		chunks := chunkText(text, 100, 20)

		gt.A(t, chunks).Length(4)
		gt.V(t, chunks[0]).Equal(strings.Repeat("x", 100))
		gt.V(t, chunks[1]).Equal(strings.Repeat("x", 100))
		gt.V(t, chunks[3]).Equal(strings.Repeat("x", 10))
	})
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		got := cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})
		gt.N(t, got).Greater(0.9999)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		got := cosineSimilarity([]float32{1, 0}, []float32{0, 1})
		gt.V(t, got).Equal(0.0)
	})

	t.Run("zero norm scores 0", func(t *testing.T) {
		got := cosineSimilarity([]float32{0, 0}, []float32{1, 1})
		gt.V(t, got).Equal(0.0)
	})
}

package text

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFixedSizeChunker(t *testing.T) {
	t.Run("OverlapWindow", func(t *testing.T) {
		input := strings.Repeat("a", 1000)
		chunks := FixedSizeChunker(input, 400, 50)

		if len(chunks) != 3 {
			t.Fatalf("got %d chunks, want 3", len(chunks))
		}
		if utf8.RuneCountInString(chunks[0].Content) != 400 {
			t.Errorf("first chunk has %d runes, want 400", utf8.RuneCountInString(chunks[0].Content))
		}
		// Window advances by 350: the last chunk is runes[700:1000].
		if utf8.RuneCountInString(chunks[2].Content) != 300 {
			t.Errorf("last chunk has %d runes, want 300", utf8.RuneCountInString(chunks[2].Content))
		}
		for i, c := range chunks {
			if c.ChunkNumber != i {
				t.Errorf("chunk %d numbered %d", i, c.ChunkNumber)
			}
		}
	})

	t.Run("DiscardsShortTail", func(t *testing.T) {
		// 360 runes: second window is only 10 runes of content.
		input := strings.Repeat("b", 360)
		chunks := FixedSizeChunker(input, 350, 0)
		if len(chunks) != 1 {
			t.Fatalf("got %d chunks, want 1 (short tail discarded)", len(chunks))
		}
	})

	t.Run("InvalidParams", func(t *testing.T) {
		input := strings.Repeat("c", 100)
		chunks := FixedSizeChunker(input, 0, 0)
		if len(chunks) != 1 || chunks[0].Content != input {
			t.Errorf("invalid params must return the whole text as one chunk")
		}
	})

	t.Run("Unicode", func(t *testing.T) {
		input := strings.Repeat("é", 500)
		chunks := FixedSizeChunker(input, 400, 50)
		for _, c := range chunks {
			if !utf8.ValidString(c.Content) {
				t.Fatalf("chunk contains a split multi-byte character")
			}
		}
	})
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 80); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := Truncate(strings.Repeat("é", 100), 80); utf8.RuneCountInString(got) != 80 {
		t.Errorf("got %d runes, want 80", utf8.RuneCountInString(got))
	}
}

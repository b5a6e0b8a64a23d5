package summarizer

import (
	"strings"
	"unicode/utf8"
)

const DefaultChunkSize = 1000

// SplitText breaks text into chunks of at most size runes on whitespace boundaries.
// Each new chunk starts with up to overlap runes of whole words from the end of the
// previous one. Words longer than size are cut into size-rune pieces.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var (
		chunks []string
		cur    []string
		curLen int
		fresh  bool // cur holds words not emitted yet
	)

	flush := func() {
		if !fresh {
			return
		}
		chunks = append(chunks, strings.Join(cur, " "))
		cur, curLen = overlapTail(cur, overlap)
		fresh = false
	}

	for _, word := range strings.Fields(text) {
		wl := utf8.RuneCountInString(word)
		if wl > size {
			flush()
			cur, curLen = nil, 0
			chunks = append(chunks, splitRunes(word, size)...)
			continue
		}

		if curLen > 0 && curLen+1+wl > size {
			flush()
			for len(cur) > 0 && curLen+1+wl > size {
				cur = cur[1:]
				curLen = joinedLen(cur)
			}
		}

		if curLen > 0 {
			curLen++
		}
		cur = append(cur, word)
		curLen += wl
		fresh = true
	}
	flush()

	return chunks
}

// Truncate keeps the first max chunks. max <= 0 keeps them all.
func Truncate(chunks []string, max int) []string {
	if max <= 0 || len(chunks) <= max {
		return chunks
	}
	return chunks[:max]
}

func overlapTail(words []string, overlap int) ([]string, int) {
	if overlap <= 0 {
		return nil, 0
	}
	n := 0
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		add := utf8.RuneCountInString(words[i])
		if n > 0 {
			add++
		}
		if n+add > overlap {
			break
		}
		n += add
		start = i
	}
	tail := append([]string(nil), words[start:]...)
	return tail, n
}

func joinedLen(words []string) int {
	if len(words) == 0 {
		return 0
	}
	n := len(words) - 1
	for _, w := range words {
		n += utf8.RuneCountInString(w)
	}
	return n
}

func splitRunes(word string, size int) []string {
	runes := []rune(word)
	pieces := make([]string, 0, len(runes)/size+1)
	for len(runes) > size {
		pieces = append(pieces, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}

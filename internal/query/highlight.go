package query

import (
	"strings"
	"unicode/utf8"
)

// Segment is a piece of highlighted text
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits text into alternating matched and unmatched segments.
// Matches are case-insensitive, found left to right without overlap, and the
// segments concatenate back to text exactly.
func Highlight(text, query string) []Segment {
	if strings.TrimSpace(query) == "" || text == "" {
		return []Segment{{Text: text}}
	}

	var segments []Segment
	rest := text
	for rest != "" {
		start, end, ok := indexFold(rest, query)
		if !ok {
			break
		}
		if start > 0 {
			segments = append(segments, Segment{Text: rest[:start]})
		}
		segments = append(segments, Segment{Text: rest[start:end], Match: true})
		rest = rest[end:]
	}
	if rest != "" {
		segments = append(segments, Segment{Text: rest})
	}
	return segments
}

// indexFold finds the first case-insensitive occurrence of substr in s and
// returns its byte range in s. Byte offsets are taken from s itself, so
// letters whose case forms differ in length stay aligned.
func indexFold(s, substr string) (int, int, bool) {
	n := utf8.RuneCountInString(substr)
	for i := range s {
		j, count := i, 0
		for j < len(s) && count < n {
			_, size := utf8.DecodeRuneInString(s[j:])
			j += size
			count++
		}
		if count < n {
			return 0, 0, false
		}
		if strings.EqualFold(s[i:j], substr) {
			return i, j, true
		}
	}
	return 0, 0, false
}

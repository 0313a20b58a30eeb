package content

import (
	"strconv"
	"strings"

	"github.com/eringen/inkpress/markdown"
)

// DefaultWordsPerMinute is the reading speed used when none is configured.
const DefaultWordsPerMinute = 200

// CountWords counts whitespace-delimited words in the plain-text rendering
// of md, so headings markers, link URLs and fence lines do not inflate the
// count.
func CountWords(md string) int {
	return len(strings.Fields(markdown.PlainText(md)))
}

// EstimateReadingTime returns the reading time in whole minutes, rounding
// up. It never reports zero: even a one-word post takes a minute to open.
func EstimateReadingTime(words, wpm int) int {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	if words <= 0 {
		return 1
	}
	return (words + wpm - 1) / wpm
}

// ReadingTimeLabel formats the reading time for display, e.g. "4 min read".
func (p Post) ReadingTimeLabel() string {
	m := p.ReadingTime
	if m < 1 {
		m = 1
	}
	return strconv.Itoa(m) + " min read"
}

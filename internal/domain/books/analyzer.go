package books

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	wordsPerMinute  = 200
	metadataWindow  = 2000
	previewLength   = 500
	previewEllipsis = "..."
	unknownValue    = "Unknown"
)

var (
	rxTitle  = regexp.MustCompile(`(?i)title[:\s]+([^\n]+)`)
	rxAuthor = regexp.MustCompile(`(?i)author[:\s]+([^\n]+)`)

	newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Analysis is everything Analyze derives from the raw bytes.
type Analysis struct {
	Statistics     Statistics
	Metadata       Metadata
	ContentPreview string
}

// DecodeText turns stored bytes into text: invalid UTF-8 is dropped and
// CRLF / CR line endings become LF.
func DecodeText(data []byte) string {
	return newlines.Replace(strings.ToValidUTF8(string(data), ""))
}

// Analyze computes statistics, metadata guesses and a preview for the content.
// Lengths and windows are counted in code points, not bytes.
func Analyze(data []byte) Analysis {
	text := DecodeText(data)

	words := len(strings.Fields(text))
	minutes := float64(words) / wordsPerMinute

	return Analysis{
		Statistics: Statistics{
			WordCount:                   words,
			CharacterCount:              utf8.RuneCountInString(text),
			LineCount:                   strings.Count(text, "\n") + 1,
			EstimatedReadingTimeMinutes: round2(minutes),
			EstimatedReadingTimeHours:   round2(minutes / 60),
		},
		Metadata:       ExtractMetadata(text),
		ContentPreview: Preview(text),
	}
}

// ExtractMetadata looks for "title:" / "author:" labels in the first
// metadataWindow code points. First match wins.
func ExtractMetadata(text string) Metadata {
	head := prefix(text, metadataWindow)
	return Metadata{
		Title:  firstGroup(rxTitle, head),
		Author: firstGroup(rxAuthor, head),
	}
}

// Preview returns the first previewLength code points, with an ellipsis
// when the text was cut.
func Preview(text string) string {
	head := prefix(text, previewLength)
	if len(head) < len(text) {
		return head + previewEllipsis
	}
	return text
}

func firstGroup(rx *regexp.Regexp, s string) string {
	m := rx.FindStringSubmatch(s)
	if m == nil {
		return unknownValue
	}
	return strings.TrimSpace(m[1])
}

// prefix returns the first n code points of s.
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

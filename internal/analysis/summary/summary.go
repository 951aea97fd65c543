// Package summary builds short extractive summaries from article text.
package summary

import "strings"

// Ellipsis is appended when the text has more than two sentence fragments.
const Ellipsis = "..."

// Extract returns the first two period-separated fragments of content,
// trimmed and rejoined with ". ", followed by Ellipsis when more fragments
// remain. Newlines are treated as spaces. Empty content yields "".
func Extract(content string) string {
	fragments := strings.Split(strings.ReplaceAll(content, "\n", " "), ".")

	var b strings.Builder
	b.WriteString(strings.TrimSpace(fragments[0]))
	if len(fragments) > 1 {
		b.WriteString(". ")
		b.WriteString(strings.TrimSpace(fragments[1]))
	}
	if len(fragments) > 2 {
		b.WriteString(Ellipsis)
	}
	return b.String()
}

package textutil

import (
	"regexp"
	"strings"
)

var (
	reInlineSpace  = regexp.MustCompile(`[^\S\n]+`)
	reExtraNewline = regexp.MustCompile(`\n{3,}`)
)

// SmartTrim collapses runs of spaces inside each line, keeps at most
// one blank line between paragraphs and trims the result.
func SmartTrim(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(reInlineSpace.ReplaceAllString(line, " "))
	}

	s = strings.Join(lines, "\n")
	s = reExtraNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

package extract

import (
	"regexp"
	"strings"
)

var pageNumberLine = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)

// CleanPage strips page-number lines, every occurrence of footer and blank
// lines from one page of text.
func CleanPage(text, footer string) string {
	text = pageNumberLine.ReplaceAllString(text, "")
	if footer != "" {
		text = strings.ReplaceAll(text, footer, "")
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// JoinPages cleans each page and joins them, one trailing newline per
// page. Pages with no text at all are skipped.
func JoinPages(pages []string, footer string) string {
	var sb strings.Builder
	for _, page := range pages {
		if page == "" {
			continue
		}
		sb.WriteString(CleanPage(page, footer))
		sb.WriteByte('\n')
	}
	return sb.String()
}

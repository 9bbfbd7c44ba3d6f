package summarize

import (
	"regexp"
	"strings"
)

// Models occasionally wrap summaries in disclaimers or meta-notes even when
// told not to. SanitizeAIText strips the common shapes and normalizes
// whitespace.
var (
	parenNote   = regexp.MustCompile(`(?i)\((?:note|disclaimer)[^)]*\)`)
	bracketNote = regexp.MustCompile(`(?i)\[(?:note|disclaimer)[^\]]*\]`)
	lineNote    = regexp.MustCompile(`(?i)^(?:note|disclaimer)\s*:.*$`)
	labelEcho   = regexp.MustCompile(`(?i)^(?:summary|english|chinese)\s*:\s*`)
)

func SanitizeAIText(text string) string {
	text = parenNote.ReplaceAllString(text, " ")
	text = bracketNote.ReplaceAllString(text, " ")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || lineNote.MatchString(line) {
			continue
		}
		kept = append(kept, labelEcho.ReplaceAllString(line, ""))
	}

	return strings.Join(strings.Fields(strings.Join(kept, " ")), " ")
}

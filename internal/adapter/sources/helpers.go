package sources

import "strings"

// splitLines splits raw into lines, tolerating either line ending.
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.Split(raw, "\n")
}

// isCommentLine reports whether line is a comment understood by the
// line-oriented adapters (router-log, configuration-file, CI/CD, custom-text).
func isCommentLine(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

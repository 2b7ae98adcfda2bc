// Package sections slices named blocks out of extracted paper text.
//
// A header is a line whose trimmed, lower-cased form is exactly one of
// Targets. Everything before the first header is ignored.
package sections

import "strings"

// Targets is the fixed header vocabulary, in output order.
var Targets = []string{
	"abstract",
	"introduction",
	"methodology",
	"methods",
	"conclusion",
	"discussion",
	"summary",
}

// Map holds the text block found under each recognized header.
type Map map[string]string

// IsHeader reports whether line is one of the target headers and returns
// its normalized name.
func IsHeader(line string) (string, bool) {
	header := strings.ToLower(strings.TrimSpace(line))
	for _, target := range Targets {
		if header == target {
			return header, true
		}
	}
	return "", false
}

// Extract scans text line by line and returns the block under each header.
// A later block with the same header replaces the earlier one.
func Extract(text string) Map {
	found := make(Map)
	current := ""
	var collected []string

	flush := func() {
		if current != "" && len(collected) > 0 {
			found[current] = strings.TrimSpace(strings.Join(collected, "\n"))
		}
		collected = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if header, ok := IsHeader(line); ok {
			flush()
			current = header
			continue
		}
		if current != "" {
			collected = append(collected, line)
		}
	}
	flush()

	return found
}

// Combined joins the blocks of m in Targets order, separated by a blank line.
func (m Map) Combined() string {
	var b strings.Builder
	for _, target := range Targets {
		if block, ok := m[target]; ok {
			b.WriteString(block)
			b.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// Slice is Extract followed by Combined. It returns "" when text has no
// recognized header.
func Slice(text string) string {
	return Extract(text).Combined()
}

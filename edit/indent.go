package edit

import "strings"

// takeIndent extracts the leading whitespace of s, ported from the
// teacher's util.TakeIndent.
func takeIndent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' {
			b.WriteRune(r)
		} else {
			break
		}
	}
	return b.String()
}

// preserveIndentation measures the indentation at position in content and
// applies it to every line of text, ported from the teacher's
// internal/manipulator.preserveIndentation (there keyed off a tree-sitter
// byte offset; here keyed off the same absolute byte offset the edit
// engine computes from a TreeNode's line/column span via linepos.Offset).
func preserveIndentation(content string, position int, text string) string {
	lineStart := strings.LastIndex(content[:position], "\n") + 1
	indent := takeIndent(content[lineStart:position])

	lineEnding := "\n"
	if strings.Contains(content, "\r\n") {
		lineEnding = "\r\n"
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = indent + strings.TrimPrefix(line, "\r")
	}
	return strings.Join(lines, lineEnding)
}

// splice replaces content[start:end] with replacement, ported from the
// teacher's util.Splice (there byte-slice based; string here since the
// edit engine works on whole-file source strings throughout).
func splice(content string, start, end int, replacement string) string {
	var b strings.Builder
	b.Grow(len(content) - (end - start) + len(replacement))
	b.WriteString(content[:start])
	b.WriteString(replacement)
	b.WriteString(content[end:])
	return b.String()
}

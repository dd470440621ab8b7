// Package diffbatch turns an incoming unified diff into a batch.Batch of
// Edit operations, one per hunk, each targeting the smallest node in the
// current parse tree that fully contains the hunk's original line range
// (spec.md §4.8).
//
// This is the one deliberately stdlib-only piece of this repo: the
// corpus's own diff library, github.com/pmezard/go-difflib (used by
// restore, whose Preview also renders the cli's edit previews), only
// *generates* unified diffs — no
// repo in the corpus parses an *incoming* one, so there is nothing to
// ground a hunk parser on. It is hand-rolled against bufio.Scanner and
// regexp rather than adopting an unrelated ecosystem library for a
// handful of regular-format lines.
package diffbatch

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/oxhq/gnawtree/batch"
	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/providers"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+\d+(?:,\d+)? @@`)

// Parser converts unified diff text into a batch.Batch, parsing each
// affected file through registry to locate hunk targets.
type Parser struct {
	registry *providers.Registry
}

// New wires a Parser to the registry it resolves hunk targets through.
func New(registry *providers.Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse reads diffText and returns the Batch it describes. File sections
// are introduced by a "+++ [b/]<path>" line (the "--- " old-file header
// is read but otherwise ignored, matching patch(1)'s own treatment of a
// diff with no rename); every hunk after it, until the next "+++ " or
// end of input, is resolved against that file's current on-disk content.
func (p *Parser) Parse(diffText string) (batch.Batch, error) {
	lines, err := splitLines(diffText)
	if err != nil {
		return batch.Batch{}, fmt.Errorf("diffbatch: failed to read diff: %w", err)
	}

	var (
		ops         []core.Operation
		currentFile string
		root        *core.TreeNode
		source      string
	)

	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "+++ "):
			currentFile = strings.TrimPrefix(strings.TrimPrefix(line, "+++ "), "b/")
			currentFile = strings.TrimSpace(currentFile)

			raw, err := os.ReadFile(currentFile)
			if err != nil {
				return batch.Batch{}, &core.IOError{Phase: "read", Path: currentFile, Err: err}
			}
			source = string(raw)

			parser, err := p.registry.Lookup(currentFile)
			if err != nil {
				return batch.Batch{}, err
			}
			root = parser.Parse(source)
			i++

		case strings.HasPrefix(line, "--- "):
			i++

		case hunkHeaderRe.MatchString(line):
			if currentFile == "" {
				return batch.Batch{}, &core.InputError{Message: "diffbatch: hunk with no preceding +++ file header"}
			}
			m := hunkHeaderRe.FindStringSubmatch(line)
			oldStart, _ := strconv.Atoi(m[1])
			oldCount := 1
			if m[2] != "" {
				oldCount, _ = strconv.Atoi(m[2])
			}

			op, next, err := buildOperation(currentFile, root, oldStart, oldCount, lines, i+1)
			if err != nil {
				return batch.Batch{}, err
			}
			ops = append(ops, op)
			i = next

		default:
			i++
		}
	}

	return batch.Batch{Operations: ops}, nil
}

// splitLines runs the diff text through bufio.Scanner so the parser
// works against full lines rather than arbitrary chunks of input.
func splitLines(text string) ([]string, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// buildOperation reads one hunk's body starting at lines[start], builds
// the Edit operation it describes, and returns the index of the line
// following the hunk.
func buildOperation(file string, root *core.TreeNode, oldStart, oldCount int, lines []string, start int) (core.Operation, int, error) {
	j := start
	consumedOld := 0
	var replacement []string

loop:
	for j < len(lines) {
		line := lines[j]
		switch {
		case line == `\ No newline at end of file`:
			j++
			continue
		case len(line) == 0:
			break loop
		case line[0] == ' ':
			replacement = append(replacement, line[1:])
			consumedOld++
			j++
		case line[0] == '+':
			replacement = append(replacement, line[1:])
			j++
		case line[0] == '-':
			consumedOld++
			j++
		default:
			break loop
		}
		if consumedOld >= oldCount && (j >= len(lines) || len(lines[j]) == 0 || lines[j][0] != '+') {
			break loop
		}
	}

	startLine := oldStart
	if startLine < 1 {
		startLine = 1
	}
	endLine := startLine + oldCount - 1
	if endLine < startLine {
		endLine = startLine
	}

	target := smallestContaining(root, startLine, endLine)
	nodeLines := strings.Split(target.Source, "\n")

	relStart := startLine - target.StartLine
	if relStart < 0 {
		relStart = 0
	}
	relEnd := relStart + oldCount
	if relEnd > len(nodeLines) {
		relEnd = len(nodeLines)
	}

	newLines := make([]string, 0, len(nodeLines)-oldCount+len(replacement))
	newLines = append(newLines, nodeLines[:relStart]...)
	newLines = append(newLines, replacement...)
	newLines = append(newLines, nodeLines[relEnd:]...)

	op := core.Operation{
		Kind:        core.OpEdit,
		File:        file,
		Target:      target.Path,
		NewContent:  strings.Join(newLines, "\n"),
		Description: fmt.Sprintf("hunk @@ -%d,%d @@", oldStart, oldCount),
	}
	return op, j, nil
}

// smallestContaining descends from n to the deepest child whose span
// still fully covers [startLine, endLine], assuming n itself does (true
// for root, which spans the whole file).
func smallestContaining(n *core.TreeNode, startLine, endLine int) *core.TreeNode {
	for _, c := range n.Children {
		if c.StartLine <= startLine && c.EndLine >= endLine {
			return smallestContaining(c, startLine, endLine)
		}
	}
	return n
}

// Package edit implements the Edit Engine: the single pipeline every
// mutating operation (Edit, Insert, Delete, Clone) runs through. Ported
// from the teacher's internal/manipulator.Manipulator.start/apply
// pipeline, generalized from tree-sitter byte offsets and a DSL pattern
// match to core.TreeNode line/column spans and core.Resolve selectors.
package edit

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/models"
	"github.com/oxhq/gnawtree/providers"
	"github.com/oxhq/gnawtree/providers/structured/linepos"
	"github.com/oxhq/gnawtree/tags"
	"github.com/oxhq/gnawtree/txlog"
)

// Engine runs the read -> parse -> resolve -> construct -> validate ->
// backup -> write -> backup -> log pipeline for one operation at a time.
type Engine struct {
	Registry *providers.Registry
	Tags     *tags.Store
	Backups  *backup.Store
	Log      *txlog.Log
	Writer   *core.AtomicWriter
}

// New wires the four collaborators the engine needs. All must be
// non-nil; the engine does not operate standalone (spec.md §4.3 ties
// every edit to a backup and a log entry).
func New(registry *providers.Registry, tagStore *tags.Store, backups *backup.Store, log *txlog.Log) *Engine {
	return &Engine{
		Registry: registry,
		Tags:     tagStore,
		Backups:  backups,
		Log:      log,
		Writer:   core.NewAtomicWriter(core.DefaultAtomicConfig()),
	}
}

// Apply runs the full pipeline for op and returns the transaction record
// it appended on success. Nothing observable happens until step 7 (the
// atomic write); every earlier failure leaves the file untouched.
func (e *Engine) Apply(op core.Operation) (*models.TransactionRecord, error) {
	original, err := os.ReadFile(op.File)
	if err != nil {
		return nil, &core.IOError{Phase: "read", Path: op.File, Err: err}
	}
	source := string(original)

	candidate, err := e.Plan(op.File, source, op)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	info, statErr := os.Stat(op.File)
	perm := os.FileMode(0o644)
	if statErr == nil {
		perm = info.Mode().Perm()
	}

	beforeRef, err := e.Backups.Snapshot(op.File, source, now)
	if err != nil {
		return nil, err
	}

	if err := e.Writer.WriteFile(op.File, []byte(candidate), perm); err != nil {
		return nil, err
	}

	afterRef, err := e.Backups.Snapshot(op.File, candidate, now)
	if err != nil {
		return nil, err
	}

	rec := &models.TransactionRecord{
		Timestamp:       now,
		FilePath:        op.File,
		OperationKind:   string(op.Kind),
		TargetPath:      op.Target,
		Description:     op.Description,
		BeforeHash:      tags.HashSource(source),
		AfterHash:       tags.HashSource(candidate),
		BackupBeforeRef: string(beforeRef),
		BackupAfterRef:  string(afterRef),
	}
	if _, err := e.Log.Append(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Plan parses source under file's extension, constructs the candidate
// content for op, and validates it, all without touching disk. It is the
// read-free half of Apply, exported so batch.Executor can chain several
// operations against the same in-memory source before any of them is
// written (spec.md §4.4: one operation's output is the next operation's
// input within a batch).
func (e *Engine) Plan(file, source string, op core.Operation) (string, error) {
	parser, err := e.Registry.Lookup(file)
	if err != nil {
		return "", err
	}
	root := parser.Parse(source)

	candidate, err := e.construct(root, source, op)
	if err != nil {
		return "", err
	}

	result := parser.Validate(candidate)
	if !result.Valid {
		if len(result.Errors) > 0 {
			return "", result.Errors[0]
		}
		return "", &core.SyntaxError{Message: "candidate failed validation"}
	}
	return candidate, nil
}

// construct builds the candidate file content for op without touching
// disk, dispatching on the operation's kind.
func (e *Engine) construct(root *core.TreeNode, source string, op core.Operation) (string, error) {
	switch op.Kind {
	case core.OpEdit:
		return e.constructEdit(root, source, op)
	case core.OpDelete:
		return e.constructDelete(root, source, op)
	case core.OpInsert:
		return e.constructInsert(root, source, op)
	case core.OpClone:
		return e.constructClone(root, source, op)
	default:
		return "", &core.InputError{Message: fmt.Sprintf("unknown operation kind %q", op.Kind)}
	}
}

func (e *Engine) resolve(root *core.TreeNode, file, selector string) (*core.TreeNode, error) {
	return core.Resolve(root, file, selector, e.Tags)
}

func (e *Engine) constructEdit(root *core.TreeNode, source string, op core.Operation) (string, error) {
	target, err := e.resolve(root, op.File, op.Target)
	if err != nil {
		return "", err
	}
	content := op.NewContent
	surgical := target.StartLine == target.EndLine && target.HasColumns()
	if !surgical {
		content = reanchorFirstLineIndent(nodeIndent(source, target), content)
	}
	start, end := nodeSpan(source, target)
	return splice(source, start, end, content), nil
}

// nodeIndent reads the leading whitespace of n's first line in source, the
// indent a whole-line splice starts at column 0 and so cannot preserve on
// its own.
func nodeIndent(source string, n *core.TreeNode) string {
	idx := linepos.NewIndex([]byte(source))
	start := idx.Offset(n.StartLine, 0)
	end := lineEndOffset(idx, len(source), n.StartLine)
	return takeIndent(source[start:end])
}

// reanchorFirstLineIndent re-anchors content's first line to indent,
// discarding whatever leading whitespace the caller wrote there (spec.md
// §4.3 step 5); every other line is left exactly as given, since a
// multi-line replacement's internal indentation is the caller's to set.
func reanchorFirstLineIndent(indent, content string) string {
	first, rest, hasRest := strings.Cut(content, "\n")
	trimmed := strings.TrimLeft(first, " \t")
	if hasRest {
		return indent + trimmed + "\n" + rest
	}
	return indent + trimmed
}

func (e *Engine) constructDelete(root *core.TreeNode, source string, op core.Operation) (string, error) {
	target, err := e.resolve(root, op.File, op.Target)
	if err != nil {
		return "", err
	}
	start, end := lineSpan(source, target.StartLine, target.EndLine)
	return splice(source, start, end, ""), nil
}

// nodeSpan returns the byte range a node occupies: a precise sub-line
// range when the node sits on one line and carries column positions
// (surgical edit), and the node's whole enclosing lines otherwise.
func nodeSpan(source string, n *core.TreeNode) (start, end int) {
	idx := linepos.NewIndex([]byte(source))
	if n.StartLine == n.EndLine && n.HasColumns() {
		return idx.Offset(n.StartLine, n.StartColumn), idx.Offset(n.EndLine, n.EndColumn)
	}
	return lineSpan(source, n.StartLine, n.EndLine)
}

// lineSpan returns the byte range spanning whole lines startLine through
// endLine inclusive, including endLine's trailing newline if it has one.
// endLine being the source's last line has no "next line start" to clamp
// to, so the span runs to end of source instead.
func lineSpan(source string, startLine, endLine int) (start, end int) {
	idx := linepos.NewIndex([]byte(source))
	return idx.Offset(startLine, 0), lineEndOffset(idx, len(source), endLine)
}

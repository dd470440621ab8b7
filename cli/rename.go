package cli

import (
	"fmt"
	"os"

	"github.com/oxhq/gnawtree/batch"
	"github.com/oxhq/gnawtree/core"
)

// runRename expands spec.md §6's rename contract into a batch of Edit
// operations: every node whose kind is identifier-like and whose source
// equals symbol, across every targeted file, gets its source replaced
// with newName. Rename is not an Operation kind of its own (core's
// Operation sum type has no Rename case) — it always reduces to Edits,
// as core/operation.go's note on Rename says.
func (d *Dispatcher) runRename(args []string) Output {
	fs := flagSet("rename")
	symbol := fs.String("symbol", "", "identifier to rename")
	newName := fs.String("new-name", "", "replacement identifier")
	recursive := fs.Bool("recursive", false, "descend into directories")
	preview := fs.Bool("preview", false, "plan the rename without writing and report whether it plans cleanly (no diffs)")
	if err := fs.Parse(args); err != nil {
		return errOutput(&core.InputError{Message: err.Error()})
	}
	if *symbol == "" || *newName == "" {
		return errOutput(&core.InputError{Message: "rename requires --symbol and --new-name"})
	}
	if fs.NArg() != 1 {
		return errOutput(&core.InputError{Message: "rename requires exactly one file or directory argument"})
	}

	files, err := expandTargets([]string{fs.Arg(0)}, *recursive)
	if err != nil {
		return errOutput(err)
	}

	var ops []core.Operation
	for _, file := range files {
		fileOps, err := d.renameOperationsForFile(file, *symbol, *newName)
		if err != nil {
			return errOutput(err)
		}
		ops = append(ops, fileOps...)
	}
	if len(ops) == 0 {
		return finishOutput([]Result{{Success: true, Message: fmt.Sprintf("no occurrences of %q found", *symbol)}}, 0)
	}

	return d.runBatchPlan(batch.Batch{Operations: ops}, preview)
}

// renameOperationsForFile parses file once and returns one Edit
// operation per identifier-like node whose source equals symbol. A
// parser that has no opinion on "identifier-like" (the generic
// fallback) simply never matches, so rename is a no-op on unsupported
// extensions rather than an error — spec.md §7 only calls Unsupported
// fatal for language-specific operations like scaffold, not rename.
func (d *Dispatcher) renameOperationsForFile(file, symbol, newName string) ([]core.Operation, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, &core.IOError{Phase: "read", Path: file, Err: err}
	}
	parser, err := d.Registry.Lookup(file)
	if err != nil {
		return nil, err
	}
	root := parser.Parse(string(raw))

	var ops []core.Operation
	var walk func(n *core.TreeNode)
	walk = func(n *core.TreeNode) {
		if core.IsIdentifierKind(n.Kind) && n.Source == symbol {
			ops = append(ops, core.Operation{
				Kind: core.OpEdit, File: file, Target: n.Path, NewContent: newName,
				Description: fmt.Sprintf("rename %s to %s", symbol, newName),
			})
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return ops, nil
}

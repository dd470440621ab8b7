package edit

import (
	"os"
	"strings"

	"github.com/oxhq/gnawtree/core"
)

// constructClone copies the node at op.SourcePath in op.SourceFile into
// op.File as a new child of op.TargetParentPath, appended after that
// parent's last existing child. Clone targets a different file than the
// one it reads from in the general case, so it parses the source file
// independently of the root/source the caller already parsed for
// op.File.
func (e *Engine) constructClone(root *core.TreeNode, source string, op core.Operation) (string, error) {
	sourceFile := op.SourceFile
	if sourceFile == "" {
		sourceFile = op.File
	}

	var (
		sourceRoot *core.TreeNode
		err        error
	)
	if sourceFile == op.File {
		sourceRoot = root
	} else {
		raw, readErr := os.ReadFile(sourceFile)
		if readErr != nil {
			return "", &core.IOError{Phase: "read", Path: sourceFile, Err: readErr}
		}
		parser, lookupErr := e.Registry.Lookup(sourceFile)
		if lookupErr != nil {
			return "", lookupErr
		}
		sourceRoot = parser.Parse(string(raw))
	}

	cloned, err := core.Resolve(sourceRoot, sourceFile, op.SourcePath, e.Tags)
	if err != nil {
		return "", err
	}

	parent, err := e.resolve(root, op.File, op.TargetParentPath)
	if err != nil {
		return "", err
	}

	content := cloned.Source
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if !strings.HasPrefix(content, "\n") {
		content = "\n" + content
	}

	insertAt, err := insertionPoint(source, parent, core.Operation{Position: core.ChildEnd})
	if err != nil {
		return "", err
	}
	indented := preserveIndentation(source, insertAt, content)
	return splice(source, insertAt, insertAt, indented), nil
}

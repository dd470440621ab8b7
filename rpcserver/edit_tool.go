package rpcserver

import (
	"context"
	"fmt"

	"github.com/oxhq/gnawtree/cli"
)

// EditTool is the one worked example tool SPEC_FULL.md §6.2 calls for:
// it exposes cli.Dispatcher's "edit" command as an RPC tool, translating
// a JSON args map into the same argv shape a human would type at the
// command line, rather than duplicating the Edit Engine wiring here.
type EditTool struct {
	Dispatcher *cli.Dispatcher
}

func (t *EditTool) Name() string        { return "edit" }
func (t *EditTool) Description() string { return "Replace the node a selector resolves to with new content." }

func (t *EditTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file":     map[string]any{"type": "string", "description": "path to the file to edit"},
			"selector": map[string]any{"type": "string", "description": "node path, @kind:name, or tag:name"},
			"content":  map[string]any{"type": "string", "description": "replacement content"},
			"preview":  map[string]any{"type": "boolean", "description": "compute a diff instead of writing"},
		},
		"required": []string{"file", "selector", "content"},
	}
}

// Call translates args into cli.Dispatcher.Run's argv form and reports
// the first result, the same value a CLI caller would see printed for a
// single-file edit.
func (t *EditTool) Call(ctx context.Context, args map[string]any) (any, error) {
	file, _ := args["file"].(string)
	selector, _ := args["selector"].(string)
	content, _ := args["content"].(string)
	preview, _ := args["preview"].(bool)

	if file == "" || selector == "" {
		return nil, fmt.Errorf("edit tool requires file and selector")
	}

	argv := []string{"edit", "--selector", selector, "--content", content}
	if preview {
		argv = append(argv, "--preview")
	}
	argv = append(argv, file)

	out := t.Dispatcher.Run(argv)
	if out.Error != nil {
		return nil, out.Error
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("edit tool: no result produced")
	}
	res := out.Results[0]
	return map[string]any{"file": res.File, "message": res.Message, "diff": res.Diff}, nil
}

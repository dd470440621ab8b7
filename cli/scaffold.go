package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/oxhq/gnawtree/core"
)

// schemaNode is one kind:name tuple from a scaffold schema, optionally
// nesting further tuples inside braces — e.g.
// "struct:Config{field:Host,field:Port}".
type schemaNode struct {
	Kind     string
	Name     string
	Children []schemaNode
}

// parseSchema parses spec.md §6's "nested kind:name tuples" schema
// syntax: comma-separated siblings, brace-delimited children.
func parseSchema(s string) ([]schemaNode, error) {
	p := &schemaParser{s: s}
	nodes, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, &core.InputError{Message: "unexpected trailing characters in scaffold schema"}
	}
	return nodes, nil
}

type schemaParser struct {
	s   string
	pos int
}

func (p *schemaParser) parseList() ([]schemaNode, error) {
	var nodes []schemaNode
	for {
		p.skipSpace()
		if p.pos >= len(p.s) || p.peek() == '}' {
			return nodes, nil
		}
		n, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		p.skipSpace()
		if p.pos < len(p.s) && p.peek() == ',' {
			p.pos++
			continue
		}
		return nodes, nil
	}
}

func (p *schemaParser) parseNode() (schemaNode, error) {
	kind := strings.TrimSpace(p.readUntil(":{},"))
	if p.pos >= len(p.s) || p.peek() != ':' {
		return schemaNode{}, &core.InputError{Message: "scaffold schema: expected ':' after kind " + kind}
	}
	p.pos++
	name := strings.TrimSpace(p.readUntil("{},"))
	n := schemaNode{Kind: kind, Name: name}

	if p.pos < len(p.s) && p.peek() == '{' {
		p.pos++
		children, err := p.parseList()
		if err != nil {
			return schemaNode{}, err
		}
		n.Children = children
		if p.pos >= len(p.s) || p.peek() != '}' {
			return schemaNode{}, &core.InputError{Message: "scaffold schema: unterminated '{' for " + kind}
		}
		p.pos++
	}
	return n, nil
}

func (p *schemaParser) peek() byte { return p.s[p.pos] }

func (p *schemaParser) readUntil(stop string) string {
	start := p.pos
	for p.pos < len(p.s) && !strings.ContainsRune(stop, rune(p.s[p.pos])) {
		p.pos++
	}
	return p.s[start:p.pos]
}

// runScaffold builds an AST-valid skeleton for --schema and writes it to
// file, refusing to overwrite an existing one. Scaffold is
// language-specific (spec.md §7: Unsupported "fails for language-specific
// operations like scaffold"), so an extension with no registered
// language renderer is a hard error rather than a silent stub.
func (d *Dispatcher) runScaffold(args []string) Output {
	fs := flagSet("scaffold")
	schema := fs.String("schema", "", "nested kind:name schema, e.g. struct:Config{field:Host}")
	if err := fs.Parse(args); err != nil {
		return errOutput(&core.InputError{Message: err.Error()})
	}
	if *schema == "" {
		return errOutput(&core.InputError{Message: "scaffold requires --schema"})
	}
	if fs.NArg() != 1 {
		return errOutput(&core.InputError{Message: "scaffold requires exactly one file argument"})
	}
	file := fs.Arg(0)
	if _, err := os.Stat(file); err == nil {
		return errOutput(&core.InputError{Message: fmt.Sprintf("%s already exists; scaffold does not overwrite it", file)})
	}

	nodes, err := parseSchema(*schema)
	if err != nil {
		return errOutput(err)
	}

	parser, err := d.Registry.Lookup(file)
	if err != nil {
		return errOutput(err)
	}

	source, err := renderSkeleton(parser.Language(), nodes)
	if err != nil {
		return errOutput(err)
	}

	result := parser.Validate(source)
	if !result.Valid {
		if len(result.Errors) > 0 {
			return errOutput(result.Errors[0])
		}
		return errOutput(&core.SyntaxError{Message: "scaffolded skeleton failed validation"})
	}

	if err := d.Engine.Writer.WriteFile(file, []byte(source), 0o644); err != nil {
		return errOutput(err)
	}
	return finishOutput([]Result{{File: file, Success: true, Message: "scaffolded"}}, 0)
}

// renderSkeleton dispatches on language id (providers.Parser.Language())
// to a per-language renderer. Languages without a dedicated renderer are
// reported as Unsupported rather than silently producing a comment-only
// stub, since scaffold's whole contract is an AST-valid skeleton in the
// target grammar.
func renderSkeleton(language string, nodes []schemaNode) (string, error) {
	switch language {
	case "go":
		return renderGoSkeleton(nodes), nil
	case "python":
		return renderPythonSkeleton(nodes), nil
	case "javascript", "typescript":
		return renderJSSkeleton(nodes), nil
	default:
		return "", &core.UnsupportedError{Extension: language}
	}
}

func renderGoSkeleton(nodes []schemaNode) string {
	var b strings.Builder
	b.WriteString("package main\n\n")
	for _, n := range nodes {
		renderGoNode(&b, n)
	}
	return b.String()
}

func renderGoNode(b *strings.Builder, n schemaNode) {
	switch n.Kind {
	case "func", "function", "method":
		fmt.Fprintf(b, "func %s() {\n", n.Name)
		for _, c := range n.Children {
			fmt.Fprintf(b, "\t// %s %s\n", c.Kind, c.Name)
		}
		b.WriteString("}\n\n")
	case "struct":
		fmt.Fprintf(b, "type %s struct {\n", n.Name)
		for _, c := range n.Children {
			if c.Kind == "field" {
				fmt.Fprintf(b, "\t%s any\n", c.Name)
			} else {
				fmt.Fprintf(b, "\t// %s %s\n", c.Kind, c.Name)
			}
		}
		b.WriteString("}\n\n")
	case "const":
		fmt.Fprintf(b, "const %s = 0\n\n", n.Name)
	case "var":
		fmt.Fprintf(b, "var %s any\n\n", n.Name)
	default:
		fmt.Fprintf(b, "// %s %s\n\n", n.Kind, n.Name)
	}
}

func renderPythonSkeleton(nodes []schemaNode) string {
	var b strings.Builder
	for _, n := range nodes {
		renderPythonNode(&b, n, 0)
	}
	return b.String()
}

func renderPythonNode(b *strings.Builder, n schemaNode, indent int) {
	pad := strings.Repeat("    ", indent)
	switch n.Kind {
	case "class":
		fmt.Fprintf(b, "%sclass %s:\n", pad, n.Name)
		if len(n.Children) == 0 {
			fmt.Fprintf(b, "%s    pass\n\n", pad)
			return
		}
		for _, c := range n.Children {
			renderPythonNode(b, c, indent+1)
		}
		b.WriteString("\n")
	case "func", "function", "method":
		fmt.Fprintf(b, "%sdef %s():\n", pad, n.Name)
		fmt.Fprintf(b, "%s    pass\n\n", pad)
	default:
		fmt.Fprintf(b, "%s# %s %s\n", pad, n.Kind, n.Name)
	}
}

func renderJSSkeleton(nodes []schemaNode) string {
	var b strings.Builder
	for _, n := range nodes {
		renderJSNode(&b, n)
	}
	return b.String()
}

func renderJSNode(b *strings.Builder, n schemaNode) {
	switch n.Kind {
	case "class":
		fmt.Fprintf(b, "class %s {\n", n.Name)
		for _, c := range n.Children {
			if c.Kind == "func" || c.Kind == "function" || c.Kind == "method" {
				fmt.Fprintf(b, "  %s() {}\n", c.Name)
			} else {
				fmt.Fprintf(b, "  // %s %s\n", c.Kind, c.Name)
			}
		}
		b.WriteString("}\n\n")
	case "func", "function":
		fmt.Fprintf(b, "function %s() {}\n\n", n.Name)
	case "const", "var", "let":
		fmt.Fprintf(b, "%s %s = null;\n\n", n.Kind, n.Name)
	default:
		fmt.Fprintf(b, "// %s %s\n\n", n.Kind, n.Name)
	}
}

package jsast

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/maxfahl/Loom-sub002/internal/logging"
)

// Supported reports whether path has an extension Parse understands.
func Supported(path string) bool {
	return languageFor(path) != nil
}

func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	}
	return nil
}

// Parse extracts a Unit from src. The grammar is chosen from the extension
// of path.
func Parse(ctx context.Context, path string, src []byte) (*Unit, error) {
	lang := languageFor(path)
	if lang == nil {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		logging.Debug("syntax errors found, results may be partial", "path", path)
	}

	e := &extractor{src: src, unit: &Unit{Path: path}}
	e.walk(root, -1)
	return e.unit, nil
}

var functionTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var decisionTypes = map[string]bool{
	"if_statement":       true,
	"for_statement":      true,
	"for_in_statement":   true,
	"while_statement":    true,
	"do_statement":       true,
	"switch_case":        true,
	"catch_clause":       true,
	"ternary_expression": true,
}

var logicalOperators = map[string]bool{"&&": true, "||": true, "??": true}

type extractor struct {
	src  []byte
	unit *Unit
}

// walk visits n in document order. fn is the index of the innermost
// enclosing function in unit.Functions, or -1 at top level.
func (e *extractor) walk(n *sitter.Node, fn int) {
	typ := n.Type()

	if functionTypes[typ] {
		if body := n.ChildByFieldName("body"); body != nil {
			if typ == "function_declaration" || typ == "generator_function_declaration" {
				e.bind(n.ChildByFieldName("name"), BindingFunction)
			}
			e.bindParameters(n)
			fn = e.addFunction(n, body)
			e.walkChildren(n, fn)
			return
		}
	}

	if decisionTypes[typ] {
		e.bump(fn)
	}

	switch typ {
	case "class_declaration", "abstract_class_declaration", "class":
		e.addClass(n)
	case "variable_declarator":
		e.bindPattern(n.ChildByFieldName("name"), BindingVariable)
	case "catch_clause":
		e.bindPattern(n.ChildByFieldName("parameter"), BindingCatch)
	case "if_statement":
		if !isElseIf(n) {
			e.addIfChain(n)
		}
	case "switch_statement":
		e.addSwitch(n)
	case "binary_expression":
		if op := n.ChildByFieldName("operator"); op != nil && logicalOperators[op.Content(e.src)] {
			e.bump(fn)
		}
	case "new_expression":
		e.addNew(n)
	}

	e.walkChildren(n, fn)
}

func (e *extractor) walkChildren(n *sitter.Node, fn int) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		e.walk(n.NamedChild(i), fn)
	}
}

func (e *extractor) bump(fn int) {
	if fn >= 0 {
		e.unit.Functions[fn].Complexity++
	}
}

func (e *extractor) addFunction(n, body *sitter.Node) int {
	e.unit.Functions = append(e.unit.Functions, Function{
		Name:       e.functionName(n),
		Line:       line(n),
		EndLine:    int(n.EndPoint().Row) + 1,
		BodyLines:  e.bodyLines(body),
		Complexity: 1,
	})
	return len(e.unit.Functions) - 1
}

func (e *extractor) functionName(n *sitter.Node) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(e.src)
	}

	parent := n.Parent()
	if parent == nil {
		return "(anonymous)"
	}

	var field string
	switch parent.Type() {
	case "variable_declarator", "public_field_definition":
		field = "name"
	case "field_definition":
		field = "property"
	case "pair":
		field = "key"
	case "assignment_expression":
		field = "left"
	case "arguments":
		if call := parent.Parent(); call != nil && call.Type() == "call_expression" {
			if callee := call.ChildByFieldName("function"); callee != nil {
				return callee.Content(e.src) + " callback"
			}
		}
	}

	if field != "" {
		if name := parent.ChildByFieldName(field); name != nil {
			return name.Content(e.src)
		}
	}
	return "(anonymous)"
}

// bodyLines counts non-blank lines between the braces of a statement block,
// or of the whole expression for concise arrow bodies.
func (e *extractor) bodyLines(body *sitter.Node) int {
	text := body.Content(e.src)
	if body.Type() == "statement_block" {
		text = strings.TrimPrefix(text, "{")
		text = strings.TrimSuffix(text, "}")
	}

	count := 0
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			count++
		}
	}
	return count
}

func (e *extractor) addClass(n *sitter.Node) {
	name := "(anonymous class)"
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = nameNode.Content(e.src)
		e.bind(nameNode, BindingClass)
	} else if parent := n.Parent(); parent != nil && parent.Type() == "variable_declarator" {
		if nameNode := parent.ChildByFieldName("name"); nameNode != nil {
			name = nameNode.Content(e.src)
		}
	}

	class := Class{Name: name, Line: line(n)}

	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			if member.Type() != "method_definition" {
				continue
			}
			if nameNode := member.ChildByFieldName("name"); nameNode != nil &&
				nameNode.Type() == "property_identifier" && nameNode.Content(e.src) != "constructor" {
				e.bind(nameNode, BindingMethod)
			}
			if method, ok := e.publicMethod(member); ok {
				class.PublicMethods = append(class.PublicMethods, method)
			}
		}
	}

	e.unit.Classes = append(e.unit.Classes, class)
}

// publicMethod returns the method name unless it is the constructor, an
// accessor, or private/protected.
func (e *extractor) publicMethod(m *sitter.Node) (string, bool) {
	nameNode := m.ChildByFieldName("name")
	if nameNode == nil || nameNode.Type() == "private_property_identifier" {
		return "", false
	}

	name := nameNode.Content(e.src)
	if name == "constructor" {
		return "", false
	}

	for i := 0; i < int(m.ChildCount()); i++ {
		c := m.Child(i)
		switch {
		case !c.IsNamed() && (c.Type() == "get" || c.Type() == "set"):
			return "", false
		case c.Type() == "accessibility_modifier" && c.Content(e.src) != "public":
			return "", false
		}
	}
	return name, true
}

func isElseIf(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "else_clause"
}

func (e *extractor) addIfChain(n *sitter.Node) {
	branches := 1
	for cur := n; ; {
		alt := cur.ChildByFieldName("alternative")
		if alt == nil {
			break
		}
		var next *sitter.Node
		for i := 0; i < int(alt.NamedChildCount()); i++ {
			if c := alt.NamedChild(i); c.Type() == "if_statement" {
				next = c
				break
			}
		}
		if next == nil {
			break
		}
		branches++
		cur = next
	}

	e.unit.Branches = append(e.unit.Branches, Branching{
		Kind:     KindIfChain,
		Line:     line(n),
		Branches: branches,
		Snippet:  e.snippet(n),
	})
}

func (e *extractor) addSwitch(n *sitter.Node) {
	cases := 0
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			if body.NamedChild(i).Type() == "switch_case" {
				cases++
			}
		}
	}

	e.unit.Branches = append(e.unit.Branches, Branching{
		Kind:     KindSwitch,
		Line:     line(n),
		Branches: cases,
		Snippet:  e.snippet(n),
	})
}

func (e *extractor) addNew(n *sitter.Node) {
	ctor := n.ChildByFieldName("constructor")
	if ctor == nil {
		return
	}
	class := ctor.Content(e.src)
	e.unit.News = append(e.unit.News, Instantiation{
		Class: class,
		Line:  line(n),
		Text:  "new " + class,
	})
}

func (e *extractor) bindParameters(fn *sitter.Node) {
	if params := fn.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			e.bindPattern(params.NamedChild(i), BindingParameter)
		}
		return
	}
	// single unparenthesized arrow parameter
	e.bindPattern(fn.ChildByFieldName("parameter"), BindingParameter)
}

// bindPattern records every identifier a binding pattern introduces.
func (e *extractor) bindPattern(n *sitter.Node, kind string) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		e.bind(n, kind)
	case "assignment_pattern", "object_assignment_pattern":
		e.bindPattern(n.ChildByFieldName("left"), kind)
	case "pair_pattern":
		e.bindPattern(n.ChildByFieldName("value"), kind)
	case "required_parameter", "optional_parameter":
		e.bindPattern(n.ChildByFieldName("pattern"), kind)
	case "rest_pattern", "object_pattern", "array_pattern":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			e.bindPattern(n.NamedChild(i), kind)
		}
	}
}

func (e *extractor) bind(n *sitter.Node, kind string) {
	if n == nil {
		return
	}
	e.unit.Bindings = append(e.unit.Bindings, Binding{
		Name: n.Content(e.src),
		Line: line(n),
		Kind: kind,
	})
}

func (e *extractor) snippet(n *sitter.Node) string {
	text := n.Content(e.src)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text) + "..."
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

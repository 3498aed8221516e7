// Package terraform reads and edits module blocks in Terraform configuration
// files while preserving their formatting and comments.
package terraform

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrNoVersion      = errors.New("module has no version attribute")
)

// Module describes one module block.
type Module struct {
	Name    string `json:"name" yaml:"name"`
	Source  string `json:"source" yaml:"source"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Line    int    `json:"line" yaml:"line"`
}

// Update is the result of SetModuleVersion.
type Update struct {
	Content    []byte
	OldVersion string
	Changed    bool
}

// SetModuleVersion sets the version attribute of the module block labelled
// module. Module labels are unique within a configuration, so only the first
// matching block is considered.
// The file is left byte-for-byte untouched when the version already matches.
func SetModuleVersion(src []byte, filename, module, version string) (*Update, error) {
	f, diags := hclwrite.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	var block *hclwrite.Block
	for _, b := range f.Body().Blocks() {
		if b.Type() == "module" && len(b.Labels()) == 1 && b.Labels()[0] == module {
			block = b
			break
		}
	}
	if block == nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrModuleNotFound, module, filename)
	}

	attr := block.Body().GetAttribute("version")
	if attr == nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrNoVersion, module, filename)
	}

	old := exprString(attr.Expr().BuildTokens(nil).Bytes(), filename)
	if old == version {
		return &Update{Content: src, OldVersion: old}, nil
	}

	block.Body().SetAttributeValue("version", cty.StringVal(version))
	return &Update{Content: f.Bytes(), OldVersion: old, Changed: true}, nil
}

// ListModules returns the module blocks of a file in source order.
func ListModules(src []byte, filename string) ([]Module, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected body type %T", file.Body)
	}

	var modules []Module
	for _, b := range body.Blocks {
		if b.Type != "module" || len(b.Labels) != 1 {
			continue
		}
		m := Module{Name: b.Labels[0], Line: b.DefRange().Start.Line}
		if attr, ok := b.Body.Attributes["source"]; ok {
			m.Source = attrString(attr, src)
		}
		if attr, ok := b.Body.Attributes["version"]; ok {
			m.Version = attrString(attr, src)
		}
		modules = append(modules, m)
	}

	sort.SliceStable(modules, func(i, j int) bool { return modules[i].Line < modules[j].Line })
	return modules, nil
}

// attrString evaluates a literal string attribute. Expressions that need
// variables are returned as written.
func attrString(attr *hclsyntax.Attribute, src []byte) string {
	v, diags := attr.Expr.Value(nil)
	if !diags.HasErrors() && v.Type() == cty.String && v.IsKnown() && !v.IsNull() {
		return v.AsString()
	}
	return strings.TrimSpace(string(attr.Expr.Range().SliceBytes(src)))
}

func exprString(raw []byte, filename string) string {
	expr, diags := hclsyntax.ParseExpression(raw, filename, hcl.InitialPos)
	if !diags.HasErrors() {
		v, vdiags := expr.Value(nil)
		if !vdiags.HasErrors() && v.Type() == cty.String && v.IsKnown() && !v.IsNull() {
			return v.AsString()
		}
	}
	return strings.TrimSpace(string(raw))
}

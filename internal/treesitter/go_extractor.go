package treesitter

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderisk/ingestworker/internal/model"
)

// extractGo maps Go's nominal-type model onto the shared Function/Class
// shape: a `type T struct{...}` declaration yields a Class named T; a
// `func (r *T) M(...)` method attaches to that Class by resolving the
// receiver's type identifier (leading `*` stripped). A method whose
// receiver type cannot be resolved to an identifier degrades to a
// top-level Function, per the Go receiver edge case.
func extractGo(pf *model.ParsedFile, root *sitter.Node, code []byte) {
	classByName := make(map[string]int) // name -> index into pf.Classes

	walk(root, func(node *sitter.Node) bool {
		if node.Kind() == "type_declaration" {
			for i := uint(0); i < node.ChildCount(); i++ {
				spec := node.Child(i)
				if spec.Kind() != "type_spec" {
					continue
				}
				typeNode := spec.ChildByFieldName("type")
				if typeNode == nil || typeNode.Kind() != "struct_type" {
					continue
				}
				nameNode := spec.ChildByFieldName("name")
				if nameNode == nil {
					continue
				}
				cls := model.Class{
					Name:      nodeText(nameNode, code),
					StartLine: int(spec.StartPosition().Row) + 1,
					EndLine:   int(spec.EndPosition().Row) + 1,
				}
				classByName[cls.Name] = len(pf.Classes)
				pf.Classes = append(pf.Classes, cls)
			}
			return false
		}
		return true
	})

	walk(root, func(node *sitter.Node) bool {
		switch node.Kind() {
		case "function_declaration":
			pf.Functions = append(pf.Functions, goFunction(node, code))
			return false
		case "method_declaration":
			fn := goFunction(node, code)
			recvType := goReceiverType(node, code)
			if recvType == "" {
				pf.Functions = append(pf.Functions, fn)
				return false
			}
			if idx, ok := classByName[recvType]; ok {
				pf.Classes[idx].Methods = append(pf.Classes[idx].Methods, fn)
			} else {
				pf.Functions = append(pf.Functions, fn)
			}
			return false
		case "import_declaration":
			pf.Imports = append(pf.Imports, goImportStrings(node, code)...)
		}
		return true
	})
}

func goFunction(node *sitter.Node, code []byte) model.Function {
	fn := model.Function{
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
	if name := node.ChildByFieldName("name"); name != nil {
		fn.Name = nodeText(name, code)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = goParamNames(params, code)
	}
	if result := node.ChildByFieldName("result"); result != nil {
		fn.ReturnType = nodeText(result, code)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		fn.Calls = dedupStrings(collectGoCalls(body, code))
	}
	return fn
}

// goReceiverType resolves a method_declaration's receiver to a bare type
// identifier, stripping one leading pointer `*`. A generic receiver resolves
// to its base type identifier. Returns "" for receivers that don't resolve
// to an identifier (e.g. qualified receivers).
func goReceiverType(node *sitter.Node, code []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	// receiver is a parameter_list with a single parameter_declaration.
	for i := uint(0); i < recv.ChildCount(); i++ {
		param := recv.Child(i)
		if param.Kind() != "parameter_declaration" {
			continue
		}
		t := param.ChildByFieldName("type")
		if t == nil {
			return ""
		}
		if t.Kind() == "pointer_type" {
			t = t.NamedChild(0)
			if t == nil {
				return ""
			}
		}
		if t.Kind() == "type_identifier" {
			return nodeText(t, code)
		}
		if t.Kind() == "generic_type" {
			if base := t.ChildByFieldName("type"); base != nil && base.Kind() == "type_identifier" {
				return nodeText(base, code)
			}
		}
		return ""
	}
	return ""
}

func goParamNames(params *sitter.Node, code []byte) []string {
	var names []string
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		if p.Kind() != "parameter_declaration" {
			continue
		}
		for j := uint(0); j < p.ChildCount(); j++ {
			c := p.Child(j)
			if c.Kind() == "identifier" {
				names = append(names, nodeText(c, code))
			}
		}
	}
	return names
}

func collectGoCalls(scope *sitter.Node, code []byte) []string {
	var calls []string
	walk(scope, func(n *sitter.Node) bool {
		if n != scope && (n.Kind() == "function_declaration" || n.Kind() == "method_declaration" || n.Kind() == "func_literal") {
			return false
		}
		if n.Kind() == "call_expression" {
			if fn := n.ChildByFieldName("function"); fn != nil {
				calls = append(calls, rightmostIdentifier(nodeText(fn, code)))
			}
		}
		return true
	})
	return calls
}

func goImportStrings(node *sitter.Node, code []byte) []string {
	var out []string
	walk(node, func(n *sitter.Node) bool {
		if n.Kind() == "interpreted_string_literal" {
			out = append(out, strings.Trim(nodeText(n, code), "\""))
			return false
		}
		return true
	})
	return out
}

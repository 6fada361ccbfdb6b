package treesitter

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderisk/ingestworker/internal/model"
)

// extractRust maps struct/enum items to Class and impl blocks to methods
// and inheritance: `impl Trait for Struct` records Trait on Struct with
// kind trait; `impl Struct` contributes methods but no inheritance edge.
func extractRust(pf *model.ParsedFile, root *sitter.Node, code []byte) {
	classByName := make(map[string]int)

	walk(root, func(node *sitter.Node) bool {
		switch node.Kind() {
		case "struct_item", "enum_item":
			if name := node.ChildByFieldName("name"); name != nil {
				n := nodeText(name, code)
				classByName[n] = len(pf.Classes)
				pf.Classes = append(pf.Classes, model.Class{
					Name:      n,
					StartLine: int(node.StartPosition().Row) + 1,
					EndLine:   int(node.EndPosition().Row) + 1,
				})
			}
			return false
		}
		return true
	})

	walk(root, func(node *sitter.Node) bool {
		switch node.Kind() {
		case "impl_item":
			applyRustImpl(pf, classByName, node, code)
			return false
		case "function_item":
			pf.Functions = append(pf.Functions, rustFunction(node, code))
			return false
		case "use_declaration":
			pf.Imports = append(pf.Imports, rustUsePaths(node, code)...)
		}
		return true
	})
}

func applyRustImpl(pf *model.ParsedFile, classByName map[string]int, node *sitter.Node, code []byte) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	typeName := rightmostIdentifier(nodeText(typeNode, code))

	idx, ok := classByName[typeName]
	if !ok {
		idx = len(pf.Classes)
		classByName[typeName] = idx
		pf.Classes = append(pf.Classes, model.Class{Name: typeName})
	}

	if traitNode := node.ChildByFieldName("trait"); traitNode != nil {
		traitName := rightmostIdentifier(nodeText(traitNode, code))
		pf.Classes[idx].Inheritance = append(pf.Classes[idx].Inheritance, model.Inheritance{
			Name: traitName,
			Kind: model.InheritTrait,
		})
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child.Kind() == "function_item" {
			pf.Classes[idx].Methods = append(pf.Classes[idx].Methods, rustFunction(child, code))
		}
	}
}

func rustFunction(node *sitter.Node, code []byte) model.Function {
	fn := model.Function{
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
	if name := node.ChildByFieldName("name"); name != nil {
		fn.Name = nodeText(name, code)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = rustParamNames(params, code)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		fn.ReturnType = nodeText(rt, code)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		fn.Calls = dedupStrings(collectRustCalls(body, code))
	}
	return fn
}

func rustParamNames(params *sitter.Node, code []byte) []string {
	var names []string
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		switch p.Kind() {
		case "self_parameter":
			names = append(names, "self")
		case "parameter":
			if pat := p.ChildByFieldName("pattern"); pat != nil {
				names = append(names, nodeText(pat, code))
			}
		}
	}
	return names
}

func collectRustCalls(scope *sitter.Node, code []byte) []string {
	var calls []string
	walk(scope, func(n *sitter.Node) bool {
		if n != scope && (n.Kind() == "function_item" || n.Kind() == "closure_expression") {
			return false
		}
		switch n.Kind() {
		case "call_expression":
			if fn := n.ChildByFieldName("function"); fn != nil {
				calls = append(calls, rightmostIdentifier(nodeText(fn, code)))
			}
		case "macro_invocation":
			if m := n.ChildByFieldName("macro"); m != nil {
				calls = append(calls, nodeText(m, code))
			}
		}
		return true
	})
	return calls
}

func rustUsePaths(node *sitter.Node, code []byte) []string {
	var out []string
	arg := node.ChildByFieldName("argument")
	if arg == nil {
		return out
	}
	walk(arg, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "scoped_identifier", "identifier":
			out = append(out, nodeText(n, code))
			return false
		}
		return true
	})
	return out
}

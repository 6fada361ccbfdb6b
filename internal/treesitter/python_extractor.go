package treesitter

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderisk/ingestworker/internal/model"
)

func extractPython(pf *model.ParsedFile, root *sitter.Node, code []byte) {
	walk(root, func(node *sitter.Node) bool {
		switch node.Kind() {
		case "function_definition":
			if isInsidePythonClass(node) {
				return true // collected as a method when the enclosing class is visited
			}
			pf.Functions = append(pf.Functions, pythonFunction(node, code))
		case "class_definition":
			pf.Classes = append(pf.Classes, pythonClass(node, code))
			return false // methods are collected by pythonClass itself
		case "import_statement", "import_from_statement":
			pf.Imports = append(pf.Imports, pythonImportStrings(node, code)...)
		}
		return true
	})
}

func isInsidePythonClass(node *sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "class_definition" {
			return true
		}
		if p.Kind() == "function_definition" {
			return false // nested function inside another function, not a method
		}
	}
	return false
}

func pythonFunction(node *sitter.Node, code []byte) model.Function {
	fn := model.Function{
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
	if name := node.ChildByFieldName("name"); name != nil {
		fn.Name = nodeText(name, code)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = pythonParamNames(params, code)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		fn.ReturnType = nodeText(rt, code)
	}
	fn.Calls = dedupStrings(collectPythonCalls(node, code))
	return fn
}

func pythonParamNames(params *sitter.Node, code []byte) []string {
	var names []string
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		switch p.Kind() {
		case "identifier":
			names = append(names, nodeText(p, code))
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			if id := p.ChildByFieldName("name"); id != nil {
				names = append(names, nodeText(id, code))
			} else if id := p.Child(0); id != nil && id.Kind() == "identifier" {
				names = append(names, nodeText(id, code))
			}
		}
	}
	return names
}

func pythonClass(node *sitter.Node, code []byte) model.Class {
	cls := model.Class{
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
	if name := node.ChildByFieldName("name"); name != nil {
		cls.Name = nodeText(name, code)
	}

	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		for i := uint(0); i < superclasses.ChildCount(); i++ {
			arg := superclasses.Child(i)
			if arg.Kind() == "identifier" || arg.Kind() == "attribute" {
				cls.Inheritance = append(cls.Inheritance, model.Inheritance{
					Name: rightmostIdentifier(nodeText(arg, code)),
					Kind: model.InheritClass,
				})
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			child := body.Child(i)
			if child.Kind() == "function_definition" {
				cls.Methods = append(cls.Methods, pythonFunction(child, code))
			}
		}
	}

	return cls
}

func collectPythonCalls(scope *sitter.Node, code []byte) []string {
	var calls []string
	walk(scope, func(n *sitter.Node) bool {
		if n != scope && n.Kind() == "function_definition" {
			return false // don't descend into nested function/method bodies
		}
		if n.Kind() == "call" {
			if fn := n.ChildByFieldName("function"); fn != nil {
				calls = append(calls, rightmostIdentifier(nodeText(fn, code)))
			}
		}
		return true
	})
	return calls
}

func pythonImportStrings(node *sitter.Node, code []byte) []string {
	var out []string
	switch node.Kind() {
	case "import_statement":
		for i := uint(0); i < node.ChildCount(); i++ {
			c := node.Child(i)
			if c.Kind() == "dotted_name" || c.Kind() == "aliased_import" {
				out = append(out, rawImportText(c, code))
			}
		}
	case "import_from_statement":
		if mod := node.ChildByFieldName("module_name"); mod != nil {
			out = append(out, nodeText(mod, code))
		}
	}
	return out
}

func rawImportText(node *sitter.Node, code []byte) string {
	if node.Kind() == "aliased_import" {
		if name := node.ChildByFieldName("name"); name != nil {
			return nodeText(name, code)
		}
	}
	return nodeText(node, code)
}

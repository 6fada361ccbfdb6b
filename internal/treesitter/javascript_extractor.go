package treesitter

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderisk/ingestworker/internal/model"
)

func extractJavaScript(pf *model.ParsedFile, root *sitter.Node, code []byte) {
	walk(root, func(node *sitter.Node) bool {
		switch node.Kind() {
		case "function_declaration":
			pf.Functions = append(pf.Functions, jsFunction(node, node.ChildByFieldName("name"), code))
		case "variable_declarator":
			if fn := node.ChildByFieldName("value"); fn != nil && (fn.Kind() == "arrow_function" || fn.Kind() == "function_expression") {
				pf.Functions = append(pf.Functions, jsFunction(fn, node.ChildByFieldName("name"), code))
				return false
			}
		case "class_declaration":
			pf.Classes = append(pf.Classes, jsClass(node, code))
			return false // methods collected by jsClass
		case "import_statement":
			if src := node.ChildByFieldName("source"); src != nil {
				pf.Imports = append(pf.Imports, strings.Trim(nodeText(src, code), "\"'`"))
			}
		}
		return true
	})
}

func jsFunction(fnNode, nameNode *sitter.Node, code []byte) model.Function {
	fn := model.Function{
		StartLine: int(fnNode.StartPosition().Row) + 1,
		EndLine:   int(fnNode.EndPosition().Row) + 1,
	}
	if nameNode != nil {
		fn.Name = nodeText(nameNode, code)
	} else {
		fn.Name = "<anonymous>"
	}
	if params := fnNode.ChildByFieldName("parameters"); params != nil {
		fn.Params = jsParamNames(params, code)
	} else if p := fnNode.ChildByFieldName("parameter"); p != nil {
		// single-param arrow function without parens: x => x + 1
		fn.Params = []string{nodeText(p, code)}
	}
	fn.Calls = dedupStrings(collectJSCalls(fnNode, code))
	return fn
}

func jsParamNames(params *sitter.Node, code []byte) []string {
	var names []string
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		switch p.Kind() {
		case "identifier":
			names = append(names, nodeText(p, code))
		case "assignment_pattern":
			if left := p.ChildByFieldName("left"); left != nil {
				names = append(names, nodeText(left, code))
			}
		}
	}
	return names
}

func jsClass(node *sitter.Node, code []byte) model.Class {
	cls := model.Class{
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
	if name := node.ChildByFieldName("name"); name != nil {
		cls.Name = nodeText(name, code)
	}

	var heritage *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c.Kind() == "class_heritage" {
			heritage = c
		}
	}
	if heritage != nil {
		for i := uint(0); i < heritage.ChildCount(); i++ {
			child := heritage.Child(i)
			if child.Kind() == "identifier" {
				cls.Inheritance = append(cls.Inheritance, model.Inheritance{
					Name: nodeText(child, code),
					Kind: model.InheritClass,
				})
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			child := body.Child(i)
			if child.Kind() == "method_definition" {
				cls.Methods = append(cls.Methods, jsFunction(child, child.ChildByFieldName("name"), code))
			}
		}
	}

	return cls
}

func collectJSCalls(scope *sitter.Node, code []byte) []string {
	var calls []string
	walk(scope, func(n *sitter.Node) bool {
		if n != scope && (n.Kind() == "function_declaration" || n.Kind() == "function_expression" ||
			n.Kind() == "arrow_function" || n.Kind() == "method_definition") {
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

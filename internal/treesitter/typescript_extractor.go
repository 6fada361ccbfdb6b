package treesitter

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderisk/ingestworker/internal/model"
)

func extractTypeScript(pf *model.ParsedFile, root *sitter.Node, code []byte) {
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
			pf.Classes = append(pf.Classes, tsClass(node, code))
			return false
		case "method_definition":
			// class methods are collected by tsClass from the enclosing class body.
			return false
		case "import_statement":
			if src := node.ChildByFieldName("source"); src != nil {
				pf.Imports = append(pf.Imports, strings.Trim(nodeText(src, code), "\"'`"))
			}
		}
		return true
	})
}

func tsClass(node *sitter.Node, code []byte) model.Class {
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
			clause := heritage.Child(i)
			kind := model.InheritClass
			if clause.Kind() == "implements_clause" {
				kind = model.InheritInterface
			}
			for j := uint(0); j < clause.ChildCount(); j++ {
				c := clause.Child(j)
				if c.Kind() == "identifier" || c.Kind() == "type_identifier" || c.Kind() == "nested_type_identifier" {
					cls.Inheritance = append(cls.Inheritance, model.Inheritance{
						Name: rightmostIdentifier(nodeText(c, code)),
						Kind: kind,
					})
				}
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

package treesitter

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func nodeText(node *sitter.Node, code []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(code) {
		end = uint(len(code))
	}
	return string(code[start:end])
}

// dedupStrings returns s with duplicates removed, preserving first-seen order.
func dedupStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// rightmostIdentifier returns the trailing identifier-like name of a call
// target expression: "obj.method" -> "method", "a::b::c" -> "c".
func rightmostIdentifier(expr string) string {
	expr = strings.TrimSpace(expr)
	for _, sep := range []string{"::", "."} {
		if idx := strings.LastIndex(expr, sep); idx != -1 {
			expr = expr[idx+len(sep):]
		}
	}
	return expr
}

// walk performs a depth-first pre-order traversal, invoking visit on every
// node including root. visit returns false to skip descending into a node's
// children (e.g. a class node whose methods the caller collects itself).
func walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), visit)
	}
}

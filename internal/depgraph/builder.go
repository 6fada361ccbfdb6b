package depgraph

import (
	"github.com/coderisk/ingestworker/internal/model"
	"github.com/coderisk/ingestworker/internal/symboltable"
)

// Build synthesizes nodes and edges from parsed files and the symbol table,
// per §4.3. Nodes are a deduplicated set; edges are an undeduplicated list.
func Build(files []*model.ParsedFile, symbols *symboltable.Table) *Graph {
	g := NewGraph()

	// Pass 1: emit every node first. Edge resolution below may target a
	// function or class declared in a file later in this slice, so no
	// edge may be synthesized until the full node set exists.
	for _, f := range files {
		g.Nodes.Add(File(f.Path))
		for _, fn := range f.Functions {
			g.Nodes.Add(Func(f.Path, fn.Name))
		}
		for _, c := range f.Classes {
			g.Nodes.Add(Class(f.Path, c.Name))
			for _, m := range c.Methods {
				g.Nodes.Add(Func(f.Path, m.Name))
			}
		}
	}

	// Pass 2: synthesize edges now that every node is known.
	for _, f := range files {
		fileNode := File(f.Path)

		for _, fn := range f.Functions {
			fnNode := Func(f.Path, fn.Name)
			g.AddEdge(Edge{Kind: EdgeDefines, From: fileNode, To: fnNode})
			addCallEdges(g, symbols, fnNode, f.Path, fn.Calls)
		}

		for _, c := range f.Classes {
			classNode := Class(f.Path, c.Name)
			g.AddEdge(Edge{Kind: EdgeDefines, From: fileNode, To: classNode})

			for _, inh := range c.Inheritance {
				addInheritanceEdge(g, symbols, classNode, f.Path, inh)
			}

			for _, m := range c.Methods {
				methodNode := Func(f.Path, m.Name)
				g.AddEdge(Edge{Kind: EdgeContains, From: classNode, To: methodNode})
				addCallEdges(g, symbols, methodNode, f.Path, m.Calls)
			}
		}

		for _, imp := range f.Imports {
			modNode := Module(imp)
			g.Nodes.Add(modNode)
			g.AddEdge(Edge{Kind: EdgeImports, From: fileNode, To: modNode})
		}
	}

	return g
}

func addCallEdges(g *Graph, symbols *symboltable.Table, caller NodeID, currentFile string, calls []string) {
	for _, callName := range calls {
		entry, ok := symbols.ResolveFunction(callName, currentFile)
		if !ok {
			continue // I3: unresolved names are discarded
		}
		callee := Func(entry.File, callName)
		if !g.Nodes.Contains(callee) {
			continue // I2
		}
		g.AddEdge(Edge{Kind: EdgeCalls, From: caller, To: callee})
	}
}

func addInheritanceEdge(g *Graph, symbols *symboltable.Table, class NodeID, currentFile string, inh model.Inheritance) {
	props := map[string]string{"kind": string(inh.Kind)}

	if entry, ok := symbols.ResolveClass(inh.Name, currentFile); ok {
		target := Class(entry.File, inh.Name)
		if g.Nodes.Contains(target) {
			g.AddEdge(Edge{Kind: EdgeInherits, From: class, To: target, Properties: props})
			return
		}
	}

	// Unresolved: target a Module stand-in node instead (P3).
	target := Module(inh.Name)
	g.Nodes.Add(target)
	g.AddEdge(Edge{Kind: EdgeInherits, From: class, To: target, Properties: props})
}

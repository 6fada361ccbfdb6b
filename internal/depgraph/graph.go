// Package depgraph assembles the typed in-memory dependency graph (C3)
// from parsed files and the symbol table, and exposes the tagged node/edge
// value types the persistor (C8) batches into the graph database.
package depgraph

import "fmt"

// NodeKind tags the variant a NodeID carries.
type NodeKind string

const (
	KindFile     NodeKind = "File"
	KindClass    NodeKind = "Class"
	KindFunction NodeKind = "Function"
	KindModule   NodeKind = "Module"
)

// NodeID is a sum type over File, Class(file,name), Function(file,name),
// and Module(name), per the spec's Design Notes. Nodes are compared and
// stored by value — there is no aliasing, no owning-graph pointer graph.
type NodeID struct {
	Kind NodeKind
	File string // set for File, Class, Function
	Name string // set for Class, Function, Module
}

// File builds a File node id.
func File(path string) NodeID { return NodeID{Kind: KindFile, File: path} }

// Class builds a Class node id.
func Class(file, name string) NodeID { return NodeID{Kind: KindClass, File: file, Name: name} }

// Func builds a Function node id.
func Func(file, name string) NodeID { return NodeID{Kind: KindFunction, File: file, Name: name} }

// Module builds a Module node id.
func Module(name string) NodeID { return NodeID{Kind: KindModule, Name: name} }

// QualifiedID is the stable persistent identifier for this node (I1, P6).
func (n NodeID) QualifiedID() string {
	switch n.Kind {
	case KindFile:
		return n.File
	case KindClass, KindFunction:
		return n.File + "::" + n.Name
	case KindModule:
		return n.Name
	default:
		return ""
	}
}

func (n NodeID) String() string {
	return fmt.Sprintf("%s(%s)", n.Kind, n.QualifiedID())
}

// EdgeKind tags the relationship an Edge carries.
type EdgeKind string

const (
	EdgeDefines   EdgeKind = "Defines"
	EdgeContains  EdgeKind = "Contains"
	EdgeCalls     EdgeKind = "Calls"
	EdgeImports   EdgeKind = "Imports"
	EdgeInherits  EdgeKind = "Inherits"
)

// Edge is a directed relationship between two nodes, with optional string
// properties (e.g. Inherits carries "kind").
type Edge struct {
	Kind       EdgeKind
	From       NodeID
	To         NodeID
	Properties map[string]string
}

// NodeSet is a deduplicated set of NodeID, stored and navigated by value.
type NodeSet struct {
	order []NodeID
	seen  map[NodeID]struct{}
}

// NewNodeSet returns an empty NodeSet.
func NewNodeSet() *NodeSet {
	return &NodeSet{seen: make(map[NodeID]struct{})}
}

// Add inserts id if not already present. Returns true if it was newly added.
func (s *NodeSet) Add(id NodeID) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Contains reports whether id is present.
func (s *NodeSet) Contains(id NodeID) bool {
	_, ok := s.seen[id]
	return ok
}

// Slice returns nodes in insertion order.
func (s *NodeSet) Slice() []NodeID {
	out := make([]NodeID, len(s.order))
	copy(out, s.order)
	return out
}

// Len reports the number of distinct nodes.
func (s *NodeSet) Len() int { return len(s.order) }

// Graph is the output of the dependency graph builder: a deduplicated node
// set and an unordered, undeduplicated edge list (the persistor's MERGE
// semantics absorb repeats, per §4.3).
type Graph struct {
	Nodes *NodeSet
	Edges []Edge
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{Nodes: NewNodeSet()}
}

// AddEdge appends an edge to the edge list, dropping it (I2) unless both
// endpoints have already been emitted as nodes in this graph.
func (g *Graph) AddEdge(e Edge) bool {
	if !g.Nodes.Contains(e.From) || !g.Nodes.Contains(e.To) {
		return false
	}
	g.Edges = append(g.Edges, e)
	return true
}

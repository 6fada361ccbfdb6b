package depgraph

import (
	"testing"

	"github.com/coderisk/ingestworker/internal/model"
	"github.com/coderisk/ingestworker/internal/symboltable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1: two Rust files, caller.rs calls helper() defined in callee.rs.
func TestBuild_CrossFileCall(t *testing.T) {
	caller := &model.ParsedFile{
		Path:     "caller.rs",
		Language: model.LangRust,
		Functions: []model.Function{
			{Name: "main", Calls: []string{"helper"}, StartLine: 1, EndLine: 3},
		},
	}
	callee := &model.ParsedFile{
		Path:     "callee.rs",
		Language: model.LangRust,
		Functions: []model.Function{
			{Name: "helper", StartLine: 1, EndLine: 1},
		},
	}

	symbols := symboltable.Build([]*model.ParsedFile{caller, callee})
	g := Build([]*model.ParsedFile{caller, callee}, symbols)

	want := Edge{Kind: EdgeCalls, From: Func("caller.rs", "main"), To: Func("callee.rs", "helper")}
	assert.Contains(t, g.Edges, want)
}

// S2: Python class Dog(Animal) with method bark.
func TestBuild_InheritanceAndContains(t *testing.T) {
	f := &model.ParsedFile{
		Path:     "models.py",
		Language: model.LangPython,
		Classes: []model.Class{
			{Name: "Animal", StartLine: 1, EndLine: 1},
			{
				Name:        "Dog",
				Inheritance: []model.Inheritance{{Name: "Animal", Kind: model.InheritClass}},
				Methods:     []model.Function{{Name: "bark", StartLine: 3, EndLine: 4}},
				StartLine:   2, EndLine: 4,
			},
		},
	}

	symbols := symboltable.Build([]*model.ParsedFile{f})
	g := Build([]*model.ParsedFile{f}, symbols)

	wantInherits := Edge{
		Kind: EdgeInherits,
		From: Class("models.py", "Dog"),
		To:   Class("models.py", "Animal"),
		Properties: map[string]string{"kind": "class"},
	}
	assert.Contains(t, g.Edges, wantInherits)

	wantContains := Edge{Kind: EdgeContains, From: Class("models.py", "Dog"), To: Func("models.py", "bark")}
	assert.Contains(t, g.Edges, wantContains)
}

// P3: unresolved inheritance target becomes a Module stand-in node.
func TestBuild_UnresolvedInheritanceBecomesModule(t *testing.T) {
	f := &model.ParsedFile{
		Path:     "x.py",
		Language: model.LangPython,
		Classes: []model.Class{
			{Name: "Widget", Inheritance: []model.Inheritance{{Name: "BaseWidget", Kind: model.InheritClass}}},
		},
	}

	symbols := symboltable.Build([]*model.ParsedFile{f})
	g := Build([]*model.ParsedFile{f}, symbols)

	require.True(t, g.Nodes.Contains(Module("BaseWidget")))
	want := Edge{
		Kind: EdgeInherits,
		From: Class("x.py", "Widget"),
		To:   Module("BaseWidget"),
		Properties: map[string]string{"kind": "class"},
	}
	assert.Contains(t, g.Edges, want)
}

// P2 (negative case): an unresolved call name produces no edge at all.
func TestBuild_UnresolvedCallDropped(t *testing.T) {
	f := &model.ParsedFile{
		Path:     "a.go",
		Language: model.LangGo,
		Functions: []model.Function{
			{Name: "main", Calls: []string{"mystery"}},
		},
	}

	symbols := symboltable.Build([]*model.ParsedFile{f})
	g := Build([]*model.ParsedFile{f}, symbols)

	for _, e := range g.Edges {
		assert.NotEqual(t, EdgeCalls, e.Kind)
	}
}

// P6: qualified-id law.
func TestQualifiedID(t *testing.T) {
	assert.Equal(t, "a/b.go", File("a/b.go").QualifiedID())
	assert.Equal(t, "a/b.go::Server", Class("a/b.go", "Server").QualifiedID())
	assert.Equal(t, "a/b.go::Start", Func("a/b.go", "Start").QualifiedID())
	assert.Equal(t, "fmt", Module("fmt").QualifiedID())
}

// I2: edges whose endpoints were never emitted as nodes are dropped.
func TestAddEdge_DropsUnemittedEndpoints(t *testing.T) {
	g := NewGraph()
	g.Nodes.Add(File("a.go"))
	ok := g.AddEdge(Edge{Kind: EdgeDefines, From: File("a.go"), To: Func("a.go", "missing")})
	assert.False(t, ok)
	assert.Empty(t, g.Edges)
}

// S6: Go method resolved by name, current file preferred.
func TestBuild_GoMethodCallCurrentFilePreferred(t *testing.T) {
	f := &model.ParsedFile{
		Path:     "server.go",
		Language: model.LangGo,
		Classes: []model.Class{
			{Name: "Server", Methods: []model.Function{{Name: "Start"}}},
		},
		Functions: []model.Function{
			{Name: "main", Calls: []string{"Start"}},
		},
	}

	symbols := symboltable.Build([]*model.ParsedFile{f})
	g := Build([]*model.ParsedFile{f}, symbols)

	want := Edge{Kind: EdgeCalls, From: Func("server.go", "main"), To: Func("server.go", "Start")}
	assert.Contains(t, g.Edges, want)
}

package symboltable

import (
	"testing"

	"github.com/coderisk/ingestworker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ResolvesCurrentFileOverFirstMatch(t *testing.T) {
	a := &model.ParsedFile{Path: "a.go", Functions: []model.Function{{Name: "helper"}}}
	b := &model.ParsedFile{Path: "b.go", Functions: []model.Function{{Name: "helper"}}}

	table := Build([]*model.ParsedFile{a, b})

	entry, ok := table.ResolveFunction("helper", "b.go")
	require.True(t, ok)
	assert.Equal(t, "b.go", entry.File)

	entry, ok = table.ResolveFunction("helper", "c.go")
	require.True(t, ok)
	assert.Equal(t, "a.go", entry.File) // first entry by insertion order
}

func TestBuild_UnresolvedReturnsFalse(t *testing.T) {
	table := Build(nil)
	_, ok := table.ResolveFunction("nope", "x.go")
	assert.False(t, ok)
}

func TestBuild_MethodIndexedBareAndQualified(t *testing.T) {
	f := &model.ParsedFile{
		Path: "models.py",
		Classes: []model.Class{
			{Name: "Dog", Methods: []model.Function{{Name: "bark"}}},
		},
	}
	table := Build([]*model.ParsedFile{f})

	_, ok := table.ResolveFunction("bark", "models.py")
	assert.True(t, ok)
	_, ok = table.ResolveFunction("Dog.bark", "models.py")
	assert.True(t, ok)
}

func TestBuild_ClassResolution(t *testing.T) {
	f := &model.ParsedFile{
		Path: "models.py",
		Classes: []model.Class{
			{Name: "Animal"},
		},
	}
	table := Build([]*model.ParsedFile{f})

	entry, ok := table.ResolveClass("Animal", "other.py")
	require.True(t, ok)
	assert.Equal(t, "models.py", entry.File)

	_, ok = table.ResolveClass("Ghost", "other.py")
	assert.False(t, ok)
}

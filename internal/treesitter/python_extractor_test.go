package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_PythonFunctionsAndCalls(t *testing.T) {
	src := `
def helper():
    pass

def main():
    helper()
    print("hi")
`
	pf, err := ParseFile("app.py", []byte(src))
	require.NoError(t, err)
	require.Len(t, pf.Functions, 2)

	names := functionNames(pf)
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "main")

	mainFn := findFunction(pf, "main")
	require.NotNil(t, mainFn)
	assert.Contains(t, mainFn.Calls, "helper")
	assert.Contains(t, mainFn.Calls, "print")
}

func TestParseFile_PythonClassInheritanceAndMethods(t *testing.T) {
	src := `
class Base:
    pass

class Derived(Base):
    def method(self):
        self.helper()

    def helper(self):
        pass
`
	pf, err := ParseFile("models.py", []byte(src))
	require.NoError(t, err)
	require.Len(t, pf.Classes, 2)

	derived := findClass(pf, "Derived")
	require.NotNil(t, derived)
	require.Len(t, derived.Inheritance, 1)
	assert.Equal(t, "Base", derived.Inheritance[0].Name)
	assert.Len(t, derived.Methods, 2)
}

func TestParseFile_PythonNestedFunctionNotDoubleCounted(t *testing.T) {
	src := `
def outer():
    def inner():
        helper()
    inner()
`
	pf, err := ParseFile("nested.py", []byte(src))
	require.NoError(t, err)
	require.Len(t, pf.Functions, 2)

	outer := findFunction(pf, "outer")
	require.NotNil(t, outer)
	assert.Contains(t, outer.Calls, "inner")
	assert.NotContains(t, outer.Calls, "helper")
}

func TestParseFile_PythonImports(t *testing.T) {
	src := `
import os
import os.path as osp
from collections import OrderedDict
`
	pf, err := ParseFile("imports.py", []byte(src))
	require.NoError(t, err)
	assert.Contains(t, pf.Imports, "os")
	assert.Contains(t, pf.Imports, "osp")
	assert.Contains(t, pf.Imports, "collections")
}

package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderisk/ingestworker/internal/model"
)

func TestParseFile_TypeScriptExtendsAndImplements(t *testing.T) {
	src := `
interface Serializable {
  serialize(): string;
}

class Base {
  log() {}
}

class Widget extends Base implements Serializable {
  serialize(): string {
    this.log();
    return "";
  }
}
`
	pf, err := ParseFile("widget.ts", []byte(src))
	require.NoError(t, err)

	widget := findClass(pf, "Widget")
	require.NotNil(t, widget)
	require.Len(t, widget.Inheritance, 2)

	var kinds []model.InheritanceKind
	var names []string
	for _, inh := range widget.Inheritance {
		kinds = append(kinds, inh.Kind)
		names = append(names, inh.Name)
	}
	assert.Contains(t, names, "Base")
	assert.Contains(t, names, "Serializable")
	assert.Contains(t, kinds, model.InheritClass)
	assert.Contains(t, kinds, model.InheritInterface)

	// method_definition nodes are not double-registered as top-level functions.
	assert.Empty(t, pf.Functions)
}

func TestParseFile_TypeScriptImports(t *testing.T) {
	src := `
import { Component } from "@angular/core";
`
	pf, err := ParseFile("app.ts", []byte(src))
	require.NoError(t, err)
	assert.Contains(t, pf.Imports, "@angular/core")
}

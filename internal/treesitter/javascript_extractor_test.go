package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_JavaScriptClassExtends(t *testing.T) {
	src := `
class Animal {
  speak() {
    this.log();
  }
  log() {}
}

class Dog extends Animal {
  bark() {
    this.speak();
  }
}
`
	pf, err := ParseFile("animals.js", []byte(src))
	require.NoError(t, err)
	require.Len(t, pf.Classes, 2)

	dog := findClass(pf, "Dog")
	require.NotNil(t, dog)
	require.Len(t, dog.Inheritance, 1)
	assert.Equal(t, "Animal", dog.Inheritance[0].Name)

	bark := findMethod(dog, "bark")
	require.NotNil(t, bark)
	assert.Contains(t, bark.Calls, "speak")

	// methods are only attributed via their enclosing class, not duplicated
	// as top-level functions.
	assert.Empty(t, pf.Functions)
}

func TestParseFile_JavaScriptArrowFunctionAndCalls(t *testing.T) {
	src := `
function helper() {}

const main = () => {
  helper();
};
`
	pf, err := ParseFile("app.js", []byte(src))
	require.NoError(t, err)
	require.Len(t, pf.Functions, 2)

	main := findFunction(pf, "main")
	require.NotNil(t, main)
	assert.Contains(t, main.Calls, "helper")
}

func TestParseFile_JavaScriptImports(t *testing.T) {
	src := `
import React from "react";
import { useState } from 'react';
`
	pf, err := ParseFile("component.js", []byte(src))
	require.NoError(t, err)
	assert.Contains(t, pf.Imports, "react")
}

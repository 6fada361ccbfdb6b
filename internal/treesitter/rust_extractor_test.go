package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderisk/ingestworker/internal/model"
)

func TestParseFile_RustImplTraitForStruct(t *testing.T) {
	src := `
struct Worker {
    name: String,
}

trait Runnable {
    fn run(&self);
}

impl Runnable for Worker {
    fn run(&self) {
        self.log();
    }
}

impl Worker {
    fn log(&self) {}
}
`
	pf, err := ParseFile("worker.rs", []byte(src))
	require.NoError(t, err)

	worker := findClass(pf, "Worker")
	require.NotNil(t, worker)
	require.Len(t, worker.Inheritance, 1)
	assert.Equal(t, "Runnable", worker.Inheritance[0].Name)
	assert.Equal(t, model.InheritTrait, worker.Inheritance[0].Kind)

	run := findMethod(worker, "run")
	require.NotNil(t, run)
	assert.Contains(t, run.Calls, "log")
	assert.NotNil(t, findMethod(worker, "log"))
}

func TestParseFile_RustTopLevelFunction(t *testing.T) {
	src := `
fn helper() {}

fn main() {
    helper();
}
`
	pf, err := ParseFile("main.rs", []byte(src))
	require.NoError(t, err)
	require.Len(t, pf.Functions, 2)
	main := findFunction(pf, "main")
	require.NotNil(t, main)
	assert.Contains(t, main.Calls, "helper")
}

func TestParseFile_RustUseImports(t *testing.T) {
	src := `
use std::collections::HashMap;
use serde::Serialize;

fn main() {}
`
	pf, err := ParseFile("lib.rs", []byte(src))
	require.NoError(t, err)
	assert.NotEmpty(t, pf.Imports)
}

package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_GoStructAndMethod(t *testing.T) {
	src := `
package main

type Worker struct {
	Name string
}

func (w *Worker) Run() {
	w.log()
}

func (w *Worker) log() {
}

func main() {
	w := &Worker{}
	w.Run()
}
`
	pf, err := ParseFile("worker.go", []byte(src))
	require.NoError(t, err)
	require.Len(t, pf.Classes, 1)
	assert.Equal(t, "Worker", pf.Classes[0].Name)
	require.Len(t, pf.Classes[0].Methods, 2)

	run := findMethod(&pf.Classes[0], "Run")
	require.NotNil(t, run)
	assert.Contains(t, run.Calls, "log")

	require.Len(t, pf.Functions, 1)
	assert.Equal(t, "main", pf.Functions[0].Name)
}

func TestParseFile_GoValueReceiverMethod(t *testing.T) {
	src := `
package main

type Point struct {
	X, Y int
}

func (p Point) Sum() int {
	return p.X + p.Y
}
`
	pf, err := ParseFile("point.go", []byte(src))
	require.NoError(t, err)
	require.Len(t, pf.Classes, 1)
	require.Len(t, pf.Classes[0].Methods, 1)
	assert.Equal(t, "Sum", pf.Classes[0].Methods[0].Name)
}

func TestParseFile_GoImports(t *testing.T) {
	src := `
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println(os.Args)
}
`
	pf, err := ParseFile("main.go", []byte(src))
	require.NoError(t, err)
	assert.Contains(t, pf.Imports, "fmt")
	assert.Contains(t, pf.Imports, "os")
}

package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkSourceFiles_SkipsVendorAndGeneratedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main.go", "package main")
	writeFile(t, dir, "src/util.py", "pass")
	writeFile(t, dir, "vendor/dep/dep.go", "package dep")
	writeFile(t, dir, "node_modules/pkg/index.js", "module.exports = {}")
	writeFile(t, dir, "dist/bundle.min.js", "x")
	writeFile(t, dir, "README.md", "docs")

	paths, err := WalkSourceFiles(dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"src/main.go", "src/util.py"}, paths)
}

func TestWalkSourceFiles_SkipsTestFixtures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.ts", "export const x = 1")
	writeFile(t, dir, "test/fixtures/sample.ts", "export const y = 2")

	paths, err := WalkSourceFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.ts"}, paths)
}

func TestReadFile_ReturnsContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a")

	content, err := ReadFile(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package a", string(content))
}

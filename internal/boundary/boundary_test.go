package boundary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderisk/ingestworker/internal/model"
)

func TestDetect_PhysicalNodeWorkspaces(t *testing.T) {
	dir := t.TempDir()
	pkg := `{"name": "root", "workspaces": ["packages/a", "packages/b"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(pkg), 0o644))

	paths := []string{"packages/a/index.js", "packages/b/index.js", "tools/script.js"}
	boundaries := Detect(dir, paths)

	var physical []model.Boundary
	for _, b := range boundaries {
		if b.Type == model.BoundaryPhysical {
			physical = append(physical, b)
		}
	}
	require.Len(t, physical, 2)
	assert.Equal(t, "physical_workspace_0", physical[0].ID)
	assert.Equal(t, []string{"packages/a/index.js"}, physical[0].Files)
}

func TestDetect_PhysicalPnpmWorkspaces(t *testing.T) {
	dir := t.TempDir()
	yaml := "packages:\n  - 'packages/core'\n  - 'packages/cli'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pnpm-workspace.yaml"), []byte(yaml), 0o644))

	paths := []string{"packages/core/index.ts", "packages/cli/index.ts"}
	boundaries := Detect(dir, paths)

	require.Len(t, boundaries, 3) // two physical workspaces plus logical_packages
	assert.Equal(t, "physical_workspace_0", boundaries[0].ID)
	assert.Equal(t, []string{"packages/core/index.ts"}, boundaries[0].Files)
}

func TestDetect_PhysicalCargoWorkspace(t *testing.T) {
	dir := t.TempDir()
	toml := "[workspace]\nmembers = [\"crate-a\", \"crate-b\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(toml), 0o644))

	paths := []string{"crate-a/src/lib.rs", "crate-b/src/lib.rs"}
	boundaries := Detect(dir, paths)

	var found bool
	for _, b := range boundaries {
		if b.ID == "physical_cargo_workspace" {
			found = true
			assert.ElementsMatch(t, paths, b.Files)
		}
	}
	assert.True(t, found)
}

func TestDetect_LogicalRequiresAtLeastTwoFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{"src/a.go", "src/b.go", "docs/readme.md", "single.go"}
	boundaries := Detect(dir, paths)

	var logical *model.Boundary
	for i := range boundaries {
		if boundaries[i].ID == "logical_src" {
			logical = &boundaries[i]
		}
	}
	require.NotNil(t, logical)
	assert.ElementsMatch(t, []string{"src/a.go", "src/b.go"}, logical.Files)

	for _, b := range boundaries {
		assert.NotEqual(t, "logical_docs", b.ID)
	}
}

func TestDetect_ArchitecturalFirstMatchWins(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		"src/controllers/user_controller.go",
		"src/views/home_view.tsx",
		"src/services/user_service.go",
		"src/repository/user_repository.go",
	}
	boundaries := Detect(dir, paths)

	var presentation, dataAccess *model.Boundary
	for i := range boundaries {
		switch boundaries[i].ID {
		case "architectural_presentation":
			presentation = &boundaries[i]
		case "architectural_data_access":
			dataAccess = &boundaries[i]
		}
	}
	require.NotNil(t, presentation)
	assert.ElementsMatch(t, []string{"src/controllers/user_controller.go", "src/views/home_view.tsx"}, presentation.Files)
	assert.Nil(t, dataAccess) // only one data-access file, below the 2-file threshold
}

func TestDetect_UnknownLayerIsDropped(t *testing.T) {
	dir := t.TempDir()
	paths := []string{"misc/a.go", "misc/b.go"}
	boundaries := Detect(dir, paths)

	for _, b := range boundaries {
		assert.NotEqual(t, model.BoundaryArchitectural, b.Type)
	}
}

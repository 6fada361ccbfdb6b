// Package boundary implements the boundary detector (C5): three independent
// passes over a parsed repository that group files into physical, logical,
// and architectural boundaries for visualization.
package boundary

import (
	"encoding/json"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coderisk/ingestworker/internal/model"
)

// Detect runs all three passes and returns the union of boundaries found.
// repoRoot is the cloned repository's filesystem root; paths is every
// parsed file's relative path.
func Detect(repoRoot string, paths []string) []model.Boundary {
	var boundaries []model.Boundary
	boundaries = append(boundaries, detectPhysical(repoRoot, paths)...)
	boundaries = append(boundaries, detectLogical(paths)...)
	boundaries = append(boundaries, detectArchitectural(paths)...)
	return boundaries
}

// detectPhysical runs each workspace check independently and unions
// whatever it finds — a repo can carry more than one physical boundary at
// once (e.g. a Node workspace alongside a go.work file).
func detectPhysical(repoRoot string, paths []string) []model.Boundary {
	var out []model.Boundary

	workspaces := readNodeWorkspaces(repoRoot)
	if len(workspaces) == 0 {
		workspaces = readPnpmWorkspaces(repoRoot)
	}
	for i, ws := range workspaces {
		out = append(out, model.Boundary{
			ID:    idFor("physical_workspace", i),
			Type:  model.BoundaryPhysical,
			Path:  ws,
			Files: filesUnderPrefix(paths, ws),
		})
	}

	if hasCargoWorkspace(repoRoot) {
		out = append(out, model.Boundary{
			ID:    "physical_cargo_workspace",
			Type:  model.BoundaryPhysical,
			Path:  "Cargo Workspace",
			Files: paths,
		})
	}

	if _, err := os.Stat(path.Join(repoRoot, "go.work")); err == nil {
		out = append(out, model.Boundary{
			ID:    "physical_go_workspace",
			Type:  model.BoundaryPhysical,
			Path:  "Go Workspace",
			Files: paths,
		})
	}

	return out
}

// readNodeWorkspaces parses a root package.json's "workspaces" field, which
// may be a bare array or an object with a "packages" array.
func readNodeWorkspaces(repoRoot string) []string {
	content, err := os.ReadFile(path.Join(repoRoot, "package.json"))
	if err != nil {
		return nil
	}

	var doc struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(content, &doc); err != nil || len(doc.Workspaces) == 0 {
		return nil
	}

	var asArray []string
	if err := json.Unmarshal(doc.Workspaces, &asArray); err == nil {
		return asArray
	}

	var asObject struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(doc.Workspaces, &asObject); err == nil {
		return asObject.Packages
	}

	return nil
}

// readPnpmWorkspaces parses pnpm-workspace.yaml's "packages" list, a
// physical-workspace format used by pnpm monorepos instead of package.json.
func readPnpmWorkspaces(repoRoot string) []string {
	content, err := os.ReadFile(path.Join(repoRoot, "pnpm-workspace.yaml"))
	if err != nil {
		return nil
	}

	var doc struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil
	}
	return doc.Packages
}

var cargoWorkspaceMarker = regexp.MustCompile(`(?m)^\s*\[workspace\]`)

func hasCargoWorkspace(repoRoot string) bool {
	content, err := os.ReadFile(path.Join(repoRoot, "Cargo.toml"))
	if err != nil {
		return false
	}
	return cargoWorkspaceMarker.Match(content)
}

func filesUnderPrefix(paths []string, prefix string) []string {
	prefix = strings.TrimSuffix(strings.TrimPrefix(prefix, "./"), "/")
	var out []string
	for _, p := range paths {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			out = append(out, p)
		}
	}
	return out
}

func detectLogical(paths []string) []model.Boundary {
	groups := make(map[string][]string)
	var order []string
	for _, p := range paths {
		dir, _, found := strings.Cut(p, "/")
		if !found {
			continue // top-level file, no grouping directory
		}
		if _, ok := groups[dir]; !ok {
			order = append(order, dir)
		}
		groups[dir] = append(groups[dir], p)
	}

	var out []model.Boundary
	for _, dir := range order {
		files := groups[dir]
		if len(files) < 2 {
			continue
		}
		out = append(out, model.Boundary{
			ID:    "logical_" + strings.ReplaceAll(dir, "/", "_"),
			Type:  model.BoundaryLogical,
			Path:  dir,
			Files: files,
		})
	}
	return out
}

type architecturalLayer struct {
	slug     string
	name     string
	keywords []string
	exts     []string
}

var architecturalLayers = []architecturalLayer{
	{
		slug:     "presentation",
		name:     "Presentation",
		keywords: []string{"component", "view", "page", "ui", "controller", "route"},
		exts:     []string{".tsx", ".jsx"},
	},
	{
		slug:     "data_access",
		name:     "Data Access",
		keywords: []string{"repository", "dao", "model", "schema", "database", "db", "migration"},
	},
	{
		slug:     "infrastructure",
		name:     "Infrastructure",
		keywords: []string{"config", "util", "helper", "middleware", "plugin", "infrastructure"},
	},
	{
		slug:     "business_logic",
		name:     "Business Logic",
		keywords: []string{"service", "business", "domain", "logic", "usecase"},
	},
}

func detectArchitectural(paths []string) []model.Boundary {
	byLayer := make(map[string][]string)

	for _, p := range paths {
		lower := strings.ToLower(p)
		layer := classifyLayer(lower)
		if layer == "" {
			continue
		}
		byLayer[layer] = append(byLayer[layer], p)
	}

	var out []model.Boundary
	for _, layer := range architecturalLayers {
		files := byLayer[layer.slug]
		if len(files) < 2 {
			continue
		}
		out = append(out, model.Boundary{
			ID:    "architectural_" + layer.slug,
			Type:  model.BoundaryArchitectural,
			Layer: layer.name,
			Files: files,
		})
	}
	return out
}

func classifyLayer(lowerPath string) string {
	for _, layer := range architecturalLayers {
		for _, kw := range layer.keywords {
			if strings.Contains(lowerPath, kw) {
				return layer.slug
			}
		}
		for _, ext := range layer.exts {
			if strings.HasSuffix(lowerPath, ext) {
				return layer.slug
			}
		}
	}
	return ""
}

func idFor(prefix string, index int) string {
	return prefix + "_" + strconv.Itoa(index)
}

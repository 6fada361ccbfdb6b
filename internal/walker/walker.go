// Package walker discovers source files under a cloned repository root,
// skipping vendor/build/cache directories and generated or fixture files.
package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/coderisk/ingestworker/internal/treesitter"
)

var skipDirs = []string{
	".git", "node_modules", "vendor", "venv", "__pycache__",
	".next", ".nuxt", "dist", "build", "out", "target",
	".cache", ".parcel-cache", "coverage", ".nyc_output",
	".pytest_cache", ".tox", ".venv", "__mocks__", ".idea", ".vscode",
}

var generatedSuffixes = []string{
	".min.js", ".bundle.js", ".generated.ts", ".generated.js",
	".pb.go", ".pb.js", ".pb.ts", "_pb.js", "_pb.ts", ".d.ts",
}

var fixtureDirs = []string{
	"/__tests__/fixtures/", "/__mocks__/", "/test/fixtures/",
	"/tests/fixtures/", "/spec/fixtures/",
}

// WalkSourceFiles walks repoRoot and returns the repo-relative paths of
// every file whose extension treesitter recognizes, excluding vendor
// directories, generated output, and test fixtures.
func WalkSourceFiles(repoRoot string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(repoRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isEligible(path) {
			return nil
		}
		if treesitter.DetectLanguage(path) == "" {
			return nil
		}

		rel, err := filepath.Rel(repoRoot, path)
		if err != nil {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// ReadFile reads the content of a file at an absolute path.
func ReadFile(absPath string) ([]byte, error) {
	return os.ReadFile(absPath)
}

func shouldSkipDir(name string) bool {
	for _, d := range skipDirs {
		if name == d || strings.HasPrefix(name, d) {
			return true
		}
	}
	return false
}

func isEligible(path string) bool {
	for _, s := range generatedSuffixes {
		if strings.HasSuffix(path, s) {
			return false
		}
	}
	slashed := filepath.ToSlash(path)
	for _, d := range fixtureDirs {
		if strings.Contains(slashed, d) {
			return false
		}
	}
	return true
}

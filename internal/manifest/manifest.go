// Package manifest implements the library manifest scanner (C6): it walks
// a cloned repository and parses recognized package manifests into a
// deduplicated catalog of declared third-party dependencies.
package manifest

import (
	"bufio"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/coderisk/ingestworker/internal/model"
)

var skipDirs = map[string]struct{}{
	"node_modules": {}, "dist": {}, "build": {}, "out": {}, "target": {},
	"venv": {}, ".venv": {}, "env": {}, "__pycache__": {}, ".cache": {}, "vendor": {},
}

// Scan walks repoRoot and returns the deduplicated, name-sorted set of
// libraries declared across every recognized manifest file.
func Scan(repoRoot string) ([]model.Library, error) {
	seen := make(map[string]model.Library)

	err := filepath.WalkDir(repoRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if _, skip := skipDirs[name]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		rel, relErr := filepath.Rel(repoRoot, p)
		if relErr != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)

		var libs []model.Library
		switch name {
		case "package.json":
			libs = parseNodeManifest(p, rel)
		case "requirements.txt":
			libs = parsePythonRequirements(p, rel)
		case "Cargo.toml":
			libs = parseCargoManifest(p, rel)
		case "go.mod":
			libs = parseGoModManifest(p, rel)
		}

		for _, lib := range libs {
			key := lib.Name + "\x00" + lib.Version + "\x00" + lib.SourceManifest
			seen[key] = lib
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Library, 0, len(seen))
	for _, lib := range seen {
		out = append(out, lib)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func parseNodeManifest(path, sourceFile string) []model.Library {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var doc struct {
		Dependencies         map[string]string `json:"dependencies"`
		DevDependencies      map[string]string `json:"devDependencies"`
		PeerDependencies     map[string]string `json:"peerDependencies"`
		OptionalDependencies map[string]string `json:"optionalDependencies"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil
	}

	var libs []model.Library
	for _, section := range []map[string]string{
		doc.Dependencies, doc.DevDependencies, doc.PeerDependencies, doc.OptionalDependencies,
	} {
		for name, version := range section {
			libs = append(libs, model.Library{Name: name, Version: version, SourceManifest: sourceFile})
		}
	}
	return libs
}

var requirementLineRegex = regexp.MustCompile(`^([A-Za-z0-9_.\-]+)\s*([=<>!~]+\s*.+)?$`)

func parsePythonRequirements(path, sourceFile string) []model.Library {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var libs []model.Library
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := requirementLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		version := strings.TrimSpace(m[2])
		libs = append(libs, model.Library{Name: m[1], Version: version, SourceManifest: sourceFile})
	}
	return libs
}

var (
	cargoSectionRegex   = regexp.MustCompile(`^\[(dependencies|dev-dependencies|build-dependencies)\]$`)
	cargoOtherSection   = regexp.MustCompile(`^\[.+\]$`)
	cargoSimpleEntry    = regexp.MustCompile(`^([A-Za-z0-9_\-]+)\s*=\s*"([^"]*)"`)
	cargoVersionedEntry = regexp.MustCompile(`^([A-Za-z0-9_\-]+)\s*=\s*\{.*?version\s*=\s*"([^"]*)"`)
)

func parseCargoManifest(path, sourceFile string) []model.Library {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var libs []model.Library
	inDepsSection := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if cargoSectionRegex.MatchString(line) {
			inDepsSection = true
			continue
		}
		if cargoOtherSection.MatchString(line) {
			inDepsSection = false
			continue
		}
		if !inDepsSection {
			continue
		}
		if m := cargoVersionedEntry.FindStringSubmatch(line); m != nil {
			libs = append(libs, model.Library{Name: m[1], Version: m[2], SourceManifest: sourceFile})
			continue
		}
		if m := cargoSimpleEntry.FindStringSubmatch(line); m != nil {
			libs = append(libs, model.Library{Name: m[1], Version: m[2], SourceManifest: sourceFile})
		}
	}
	return libs
}

var (
	goSingleRequire = regexp.MustCompile(`^require\s+(\S+)\s+(\S+)`)
	goBlockStart    = regexp.MustCompile(`^require\s*\($`)
	goBlockEntry    = regexp.MustCompile(`^(\S+)\s+(\S+)`)
)

func parseGoModManifest(path, sourceFile string) []model.Library {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var libs []model.Library
	inBlock := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if inBlock {
			if line == ")" {
				inBlock = false
				continue
			}
			line = strings.TrimSuffix(line, " // indirect")
			if m := goBlockEntry.FindStringSubmatch(line); m != nil {
				libs = append(libs, model.Library{Name: m[1], Version: m[2], SourceManifest: sourceFile})
			}
			continue
		}
		if goBlockStart.MatchString(line) {
			inBlock = true
			continue
		}
		if m := goSingleRequire.FindStringSubmatch(line); m != nil {
			libs = append(libs, model.Library{Name: m[1], Version: m[2], SourceManifest: sourceFile})
		}
	}
	return libs
}

// ResolveImport maps an import string to a library name per the
// import-to-library mapping rule, returning ("", false) when s cannot name
// a library (relative/absolute paths).
func ResolveImport(s string) (string, bool) {
	if strings.HasPrefix(s, ".") || strings.HasPrefix(s, "/") {
		return "", false
	}
	if strings.HasPrefix(s, "@") {
		parts := strings.SplitN(s, "/", 3)
		if len(parts) >= 2 {
			return parts[0] + "/" + parts[1], true
		}
		return s, true
	}
	if idx := strings.Index(s, "/"); idx != -1 {
		return s[:idx], true
	}
	return s, true
}

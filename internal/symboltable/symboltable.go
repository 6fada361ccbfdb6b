// Package symboltable builds the per-job, multi-valued name index (C2)
// that drives heuristic call and inheritance resolution across files.
package symboltable

import "github.com/coderisk/ingestworker/internal/model"

// Entry is a single declaration site for a name.
type Entry struct {
	File      string
	Name      string
	StartLine int
	EndLine   int
}

// Table is the global index of declared names for one job. Resolution is
// deliberately heuristic (name-based, current-file preferred, first-match
// otherwise) and may collide across files — callers must not assume
// semantic accuracy.
type Table struct {
	functions   map[string][]Entry
	classes     map[string][]Entry
	fileExports map[string][]string
}

// Build indexes every function, method, and class across all parsed files
// in one pass. Class methods are indexed both as "Class.method" and as a
// bare "method", per §4.2.
func Build(files []*model.ParsedFile) *Table {
	t := &Table{
		functions:   make(map[string][]Entry),
		classes:     make(map[string][]Entry),
		fileExports: make(map[string][]string),
	}

	for _, f := range files {
		for _, fn := range f.Functions {
			t.addFunction(f.Path, fn.Name, fn.StartLine, fn.EndLine)
			t.fileExports[f.Path] = append(t.fileExports[f.Path], fn.Name)
		}
		for _, c := range f.Classes {
			t.classes[c.Name] = append(t.classes[c.Name], Entry{
				File: f.Path, Name: c.Name, StartLine: c.StartLine, EndLine: c.EndLine,
			})
			t.fileExports[f.Path] = append(t.fileExports[f.Path], c.Name)

			for _, m := range c.Methods {
				qualified := c.Name + "." + m.Name
				t.addFunction(f.Path, qualified, m.StartLine, m.EndLine)
				t.addFunction(f.Path, m.Name, m.StartLine, m.EndLine)
				t.fileExports[f.Path] = append(t.fileExports[f.Path], qualified)
			}
		}
	}

	return t
}

func (t *Table) addFunction(file, name string, start, end int) {
	t.functions[name] = append(t.functions[name], Entry{File: file, Name: name, StartLine: start, EndLine: end})
}

// ResolveFunction resolves a call-target name in the context of the calling
// file: an entry declared in currentFile wins; otherwise the first entry by
// insertion order; otherwise unresolved.
func (t *Table) ResolveFunction(name, currentFile string) (Entry, bool) {
	return resolve(t.functions[name], currentFile)
}

// ResolveClass resolves a class/interface/trait name the same way.
func (t *Table) ResolveClass(name, currentFile string) (Entry, bool) {
	return resolve(t.classes[name], currentFile)
}

func resolve(entries []Entry, currentFile string) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	for _, e := range entries {
		if e.File == currentFile {
			return e, true
		}
	}
	return entries[0], true
}

// Exports returns the declared names for a file (used by diagnostics/tests).
func (t *Table) Exports(file string) []string {
	return t.fileExports[file]
}

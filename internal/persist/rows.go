package persist

import (
	"sort"
	"strings"

	"github.com/coderisk/ingestworker/internal/comm"
	"github.com/coderisk/ingestworker/internal/depgraph"
	"github.com/coderisk/ingestworker/internal/manifest"
	"github.com/coderisk/ingestworker/internal/model"
)

// fileNodeRow builds a File node row, folding in that file's git
// contribution stats when present.
func fileNodeRow(f *model.ParsedFile, contributions map[string]*model.FileContribution) map[string]any {
	row := map[string]any{"path": f.Path, "language": f.Language}

	c, ok := contributions[f.Path]
	if !ok {
		return row
	}
	row["commit_count"] = int64(c.CommitCount)
	row["last_modified"] = c.LastModified
	row["primary_author"] = c.PrimaryAuthor
	row["lines_added"] = int64(c.LinesAdded)
	row["lines_deleted"] = int64(c.LinesDeleted)
	row["lines_changed"] = int64(c.LinesChanged)
	return row
}

// qualifiedID mirrors depgraph.NodeID.QualifiedID for the persisted-node key,
// since the persistor works from domain types, not graph node values.
func qualifiedID(filePath, name string) string {
	return filePath + "::" + name
}

func fileRows(files []*model.ParsedFile, contributions map[string]*model.FileContribution) []map[string]any {
	rows := make([]map[string]any, 0, len(files))
	for _, f := range files {
		rows = append(rows, fileNodeRow(f, contributions))
	}
	return rows
}

func classRows(files []*model.ParsedFile) []map[string]any {
	var rows []map[string]any
	for _, f := range files {
		for _, c := range f.Classes {
			rows = append(rows, map[string]any{
				"id": qualifiedID(f.Path, c.Name), "path": f.Path, "name": c.Name,
				"start_line": int64(c.StartLine), "end_line": int64(c.EndLine),
			})
		}
	}
	return rows
}

func functionRows(files []*model.ParsedFile) []map[string]any {
	var rows []map[string]any
	add := func(path string, fn model.Function) {
		rows = append(rows, map[string]any{
			"id": qualifiedID(path, fn.Name), "path": path, "name": fn.Name,
			"return_type": fn.ReturnType, "start_line": int64(fn.StartLine), "end_line": int64(fn.EndLine),
		})
	}
	for _, f := range files {
		for _, fn := range f.Functions {
			add(f.Path, fn)
		}
		for _, c := range f.Classes {
			for _, m := range c.Methods {
				add(f.Path, m)
			}
		}
	}
	return rows
}

func moduleRows(g *depgraph.Graph) []map[string]any {
	var rows []map[string]any
	for _, n := range g.Nodes.Slice() {
		if n.Kind == depgraph.KindModule {
			rows = append(rows, map[string]any{"name": n.Name})
		}
	}
	return rows
}

func libraryRows(libs []model.Library) []map[string]any {
	rows := make([]map[string]any, 0, len(libs))
	for _, l := range libs {
		rows = append(rows, map[string]any{"name": l.Name, "version": l.Version, "source_manifest": l.SourceManifest})
	}
	return rows
}

func boundaryRows(boundaries []model.Boundary) []map[string]any {
	rows := make([]map[string]any, 0, len(boundaries))
	for _, b := range boundaries {
		rows = append(rows, map[string]any{
			"id": b.ID, "type": string(b.Type), "layer": b.Layer, "path": b.Path,
		})
	}
	return rows
}

func tableRows(files []*model.ParsedFile) []map[string]any {
	seen := make(map[string]struct{})
	var rows []map[string]any
	for _, f := range files {
		for _, t := range f.Tables {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			rows = append(rows, map[string]any{"name": t})
		}
	}
	return rows
}

func serviceRows(files []*model.ParsedFile) []map[string]any {
	type key struct{ target, protocol string }
	seen := make(map[key]struct{})
	var rows []map[string]any
	for _, f := range files {
		for _, sc := range f.Calls {
			k := key{sc.Target, sc.Protocol}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			rows = append(rows, map[string]any{"target": sc.Target, "protocol": sc.Protocol})
		}
	}
	return rows
}

func endpointRows(endpoints []model.Endpoint) []map[string]any {
	type key struct{ url, method string }
	seen := make(map[key]struct{})
	var rows []map[string]any
	for _, e := range endpoints {
		k := key{e.URL, e.Method}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, map[string]any{"url": e.URL, "method": e.Method, "host": e.Host})
	}
	return rows
}

func rpcServiceRows(calls []model.RpcCall) []map[string]any {
	seen := make(map[string]struct{})
	var rows []map[string]any
	for _, c := range calls {
		if _, ok := seen[c.Target]; ok {
			continue
		}
		seen[c.Target] = struct{}{}
		rows = append(rows, map[string]any{"target": c.Target})
	}
	return rows
}

func messageQueueRows(topics []model.QueueTopic) []map[string]any {
	seen := make(map[string]struct{})
	var rows []map[string]any
	for _, t := range topics {
		if _, ok := seen[t.Topic]; ok {
			continue
		}
		seen[t.Topic] = struct{}{}
		rows = append(rows, map[string]any{"topic": t.Topic})
	}
	return rows
}

func composeServiceRows(services []model.ComposeService) []map[string]any {
	rows := make([]map[string]any, 0, len(services))
	for _, s := range services {
		rows = append(rows, map[string]any{"name": s.Name, "ports": s.Ports})
	}
	return rows
}

// --- edges ---

func definesRows(files []*model.ParsedFile) []map[string]any {
	var rows []map[string]any
	for _, f := range files {
		for _, fn := range f.Functions {
			rows = append(rows, map[string]any{"from_path": f.Path, "to_id": qualifiedID(f.Path, fn.Name)})
		}
		for _, c := range f.Classes {
			rows = append(rows, map[string]any{"from_path": f.Path, "to_id": qualifiedID(f.Path, c.Name)})
		}
	}
	return rows
}

func containsRows(files []*model.ParsedFile) []map[string]any {
	var rows []map[string]any
	for _, f := range files {
		for _, c := range f.Classes {
			classID := qualifiedID(f.Path, c.Name)
			for _, m := range c.Methods {
				rows = append(rows, map[string]any{"class_id": classID, "func_id": qualifiedID(f.Path, m.Name)})
			}
		}
	}
	return rows
}

func callsRows(g *depgraph.Graph) []map[string]any {
	var rows []map[string]any
	for _, e := range g.Edges {
		if e.Kind != depgraph.EdgeCalls {
			continue
		}
		rows = append(rows, map[string]any{
			"from_id": qualifiedID(e.From.File, e.From.Name),
			"to_id":   qualifiedID(e.To.File, e.To.Name),
		})
	}
	return rows
}

func importsRows(files []*model.ParsedFile) []map[string]any {
	var rows []map[string]any
	for _, f := range files {
		for _, imp := range f.Imports {
			rows = append(rows, map[string]any{"path": f.Path, "module": imp})
		}
	}
	return rows
}

func inheritsRows(g *depgraph.Graph) []map[string]any {
	var rows []map[string]any
	for _, e := range g.Edges {
		if e.Kind != depgraph.EdgeInherits {
			continue
		}
		row := map[string]any{
			"from_id": qualifiedID(e.From.File, e.From.Name),
			"kind":    e.Properties["kind"],
		}
		if e.To.Kind == depgraph.KindModule {
			row["to_module"] = e.To.Name
			row["to_is_module"] = true
		} else {
			row["to_id"] = qualifiedID(e.To.File, e.To.Name)
			row["to_is_module"] = false
		}
		rows = append(rows, row)
	}
	return rows
}

func belongsToRows(boundaries []model.Boundary) []map[string]any {
	var rows []map[string]any
	for _, b := range boundaries {
		for _, f := range b.Files {
			rows = append(rows, map[string]any{"path": f, "boundary_id": b.ID})
		}
	}
	return rows
}

// dependsOnLibraryRows resolves each file's imports against the library
// catalog per the import-to-library mapping rule, emitting one row per
// (file, library) match.
func dependsOnLibraryRows(files []*model.ParsedFile, libs []model.Library) []map[string]any {
	catalog := make(map[string]model.Library, len(libs))
	for _, l := range libs {
		catalog[l.Name] = l
	}

	var rows []map[string]any
	for _, f := range files {
		for _, imp := range f.Imports {
			name, ok := manifest.ResolveImport(imp)
			if !ok {
				continue
			}
			lib, found := catalog[name]
			if !found {
				continue
			}
			rows = append(rows, map[string]any{"path": f.Path, "library": lib.Name, "version": lib.Version})
		}
	}
	return rows
}

func usesTableRows(files []*model.ParsedFile) []map[string]any {
	var rows []map[string]any
	for _, f := range files {
		for _, t := range f.Tables {
			rows = append(rows, map[string]any{"path": f.Path, "table": t})
		}
	}
	return rows
}

func callsServiceRows(files []*model.ParsedFile) []map[string]any {
	var rows []map[string]any
	for _, f := range files {
		for _, sc := range f.Calls {
			rows = append(rows, map[string]any{"path": f.Path, "target": sc.Target, "protocol": sc.Protocol})
		}
	}
	return rows
}

func callsEndpointRows(endpoints []model.Endpoint) []map[string]any {
	rows := make([]map[string]any, 0, len(endpoints))
	for _, e := range endpoints {
		rows = append(rows, map[string]any{"path": e.FilePath, "url": e.URL, "method": e.Method})
	}
	return rows
}

func callsRpcRows(calls []model.RpcCall) []map[string]any {
	rows := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		rows = append(rows, map[string]any{"path": c.FilePath, "target": c.Target})
	}
	return rows
}

func queueEdgeRows(topics []model.QueueTopic, produces bool) []map[string]any {
	var rows []map[string]any
	for _, t := range topics {
		if t.Produces != produces {
			continue
		}
		rows = append(rows, map[string]any{"path": t.FilePath, "topic": t.Topic})
	}
	return rows
}

func exposedByRows(links []comm.EndpointLink) []map[string]any {
	rows := make([]map[string]any, 0, len(links))
	for _, l := range links {
		rows = append(rows, map[string]any{
			"url": l.Endpoint.URL, "method": l.Endpoint.Method, "service": l.ComposeService,
		})
	}
	return rows
}

// fileDependsOnRows resolves file-to-file import edges using a loose
// stem / parent-dir match against every other ParsedFile's path.
func fileDependsOnRows(files []*model.ParsedFile) []map[string]any {
	index := buildModuleIndex(files)

	var rows []map[string]any
	for _, f := range files {
		for _, imp := range f.Imports {
			for _, target := range resolveFileImport(index, imp) {
				if target == f.Path {
					continue
				}
				rows = append(rows, map[string]any{"from_path": f.Path, "to_path": target, "import_path": imp})
			}
		}
	}
	return rows
}

// buildModuleIndex maps a module name (file stem, full path, and parent-dir
// name, for every file) to every file path that could satisfy it.
func buildModuleIndex(files []*model.ParsedFile) map[string][]string {
	index := make(map[string][]string)
	for _, f := range files {
		stem := fileStem(f.Path)
		index[stem] = append(index[stem], f.Path)
		index[f.Path] = append(index[f.Path], f.Path)

		if dir := parentDir(f.Path); dir != "" {
			index[dir] = append(index[dir], f.Path)
		}
	}
	for k := range index {
		sort.Strings(index[k])
	}
	return index
}

func resolveFileImport(index map[string][]string, importStr string) []string {
	if targets, ok := index[importStr]; ok {
		return targets
	}

	trimmed := strings.TrimPrefix(strings.TrimPrefix(importStr, "./"), "../")
	last := lastPathSegment(trimmed)
	if targets, ok := index[last]; ok {
		return targets
	}

	if strings.HasPrefix(importStr, ".") {
		last = lastNonDotSegment(importStr)
		if targets, ok := index[last]; ok {
			return targets
		}
	}

	return nil
}

func fileStem(path string) string {
	base := path
	if idx := strings.LastIndex(base, "/"); idx != -1 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx != -1 {
		base = base[:idx]
	}
	return base
}

func parentDir(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx == -1 {
		return ""
	}
	parent := path[:idx]
	if pidx := strings.LastIndex(parent, "/"); pidx != -1 {
		return parent[pidx+1:]
	}
	return parent
}

func lastPathSegment(s string) string {
	s = strings.TrimSuffix(s, "/")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		return s[idx+1:]
	}
	return s
}

func lastNonDotSegment(s string) string {
	segments := strings.Split(s, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "." && segments[i] != ".." && segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

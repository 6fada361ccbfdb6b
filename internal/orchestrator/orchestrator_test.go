package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderisk/ingestworker/internal/depgraph"
	"github.com/coderisk/ingestworker/internal/model"
	"github.com/coderisk/ingestworker/internal/persist"
)

func TestDedupEndpoints_RemovesDuplicates(t *testing.T) {
	endpoints := []model.Endpoint{
		{URL: "/a", Method: "GET", FilePath: "x.go"},
		{URL: "/a", Method: "GET", FilePath: "x.go"},
		{URL: "/b", Method: "POST", FilePath: "y.go"},
	}

	out := dedupEndpoints(endpoints)
	require.Len(t, out, 2)
}

func TestIsComposeFile(t *testing.T) {
	assert.True(t, isComposeFile("docker-compose.yml"))
	assert.True(t, isComposeFile("deploy/docker-compose.yaml"))
	assert.False(t, isComposeFile("compose.yml"))
}

func TestSummarize_CountsFunctionsAcrossTopLevelAndMethods(t *testing.T) {
	files := []*model.ParsedFile{
		{
			Path:     "a.go",
			Language: "go",
			Functions: []model.Function{{Name: "main"}},
			Classes: []model.Class{
				{Name: "Worker", Methods: []model.Function{{Name: "Run"}, {Name: "Stop"}}},
			},
		},
	}
	graph := depgraph.NewGraph()
	graph.Nodes.Add(depgraph.File("a.go"))
	graph.Nodes.Add(depgraph.Func("a.go", "main"))
	graph.AddEdge(depgraph.Edge{Kind: depgraph.EdgeDefines, From: depgraph.File("a.go"), To: depgraph.Func("a.go", "main")})

	summary := summarize(files, graph, false, persist.Job{})

	assert.Equal(t, 1, summary.TotalFiles)
	assert.Equal(t, 3, summary.TotalFunctions) // 1 top-level + 2 methods
	assert.Equal(t, 1, summary.TotalClasses)
	assert.Equal(t, 1, summary.Dependencies)
	assert.Nil(t, summary.GraphPatch)
}

func TestSummarize_IncrementalIncludesGraphPatch(t *testing.T) {
	files := []*model.ParsedFile{{Path: "a.go", Language: "go"}}
	graph := depgraph.NewGraph()

	job := persist.Job{Files: files, ChangedFiles: []string{"a.go"}}
	summary := summarize(files, graph, true, job)

	require.NotNil(t, summary.GraphPatch)
	assert.NotEmpty(t, summary.GraphPatch.Nodes)
	assert.NotEmpty(t, summary.GraphPatch.Edges)
}

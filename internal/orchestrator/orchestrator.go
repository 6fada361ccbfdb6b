// Package orchestrator sequences C1-C8 into the end-to-end ingestion
// pipeline (C9): clone, parse, resolve, analyze, persist, and report
// progress to the status collaborator at each checkpoint.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/coderisk/ingestworker/internal/boundary"
	"github.com/coderisk/ingestworker/internal/cloner"
	"github.com/coderisk/ingestworker/internal/comm"
	"github.com/coderisk/ingestworker/internal/config"
	"github.com/coderisk/ingestworker/internal/depgraph"
	ingesterrors "github.com/coderisk/ingestworker/internal/errors"
	"github.com/coderisk/ingestworker/internal/gitanalyzer"
	"github.com/coderisk/ingestworker/internal/manifest"
	"github.com/coderisk/ingestworker/internal/model"
	"github.com/coderisk/ingestworker/internal/persist"
	"github.com/coderisk/ingestworker/internal/queue"
	"github.com/coderisk/ingestworker/internal/statusclient"
	"github.com/coderisk/ingestworker/internal/symboltable"
	"github.com/coderisk/ingestworker/internal/treesitter"
	"github.com/coderisk/ingestworker/internal/walker"
)

// maxCommits bounds the git analyzer's recent-commits buffer (§4.4); all
// commits still contribute to aggregate statistics.
const maxCommits = 500

// Orchestrator drives one job at a time through the pipeline.
type Orchestrator struct {
	persistor *persist.Persistor
	status    *statusclient.Client
	cfg       *config.Config
	logger    *slog.Logger
}

// New builds an Orchestrator over an already-connected Persistor.
func New(persistor *persist.Persistor, status *statusclient.Client, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		persistor: persistor,
		status:    status,
		cfg:       cfg,
		logger:    slog.Default().With("component", "orchestrator"),
	}
}

// ProcessJob runs one job through the full pipeline, reporting progress
// checkpoints at 0, 25, 50, 60, 75, 90, 100. Any error short-circuits the
// job and is reported as status=FAILED.
func (o *Orchestrator) ProcessJob(ctx context.Context, job *queue.Job) error {
	o.status.ReportProgress(ctx, job.JobID, "PROCESSING", 0)

	if err := o.run(ctx, job); err != nil {
		o.logger.Error("job failed", "job_id", job.JobID, "error", err)
		o.status.ReportFailed(ctx, job.JobID, err)
		return err
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, job *queue.Job) error {
	gitToken := job.Options.GitToken
	if gitToken == "" {
		gitToken = o.cfg.GitToken()
	}

	clone, err := cloner.CloneRepository(ctx, job.RepoURL, job.Branch, gitToken)
	if err != nil {
		return err
	}
	defer clone.Close()

	incremental := job.Options.IsIncremental()

	var paths []string
	if incremental {
		paths = job.Options.ChangedFiles
	} else {
		paths, err = walker.WalkSourceFiles(clone.Path)
		if err != nil {
			return ingesterrors.Wrap(err, ingesterrors.ErrorTypeOptionalAnalyzer, ingesterrors.SeverityCritical, "failed to walk repository")
		}
	}

	files := o.parseFiles(ctx, clone.Path, paths)
	o.status.ReportProgress(ctx, job.JobID, "PROCESSING", 25)
	o.status.ReportProgress(ctx, job.JobID, "PROCESSING", 50)

	symbols := symboltable.Build(files)

	contributions, boundaries, libraries, endpointLinks, rpcCalls, queueTopics, composeServices, endpoints := o.runAnalyzers(ctx, clone.Path, files)
	o.status.ReportProgress(ctx, job.JobID, "PROCESSING", 60)

	graph := depgraph.Build(files, symbols)
	o.status.ReportProgress(ctx, job.JobID, "PROCESSING", 75)

	endpoints = dedupEndpoints(endpoints)

	persistJob := persist.Job{
		JobID:           job.JobID,
		RepoID:          job.RepoID,
		Files:           files,
		Contributions:   contributions,
		Graph:           graph,
		Libraries:       libraries,
		Boundaries:      boundaries,
		Endpoints:       endpoints,
		RpcCalls:        rpcCalls,
		QueueTopics:     queueTopics,
		ComposeServices: composeServices,
		EndpointLinks:   endpointLinks,
		Incremental:     incremental,
		ChangedFiles:    job.Options.ChangedFiles,
		RemovedFiles:    job.Options.RemovedFiles,
	}

	if err := o.persistor.Persist(ctx, persistJob); err != nil {
		return ingesterrors.PersistenceError(err, "failed to persist job "+job.JobID)
	}
	o.status.ReportProgress(ctx, job.JobID, "PROCESSING", 90)

	summary := summarize(files, graph, incremental, persistJob)
	o.status.ReportCompleted(ctx, job.JobID, summary)

	return nil
}

// parseFiles parses every discovered path with a bounded worker pool,
// merging per-file results only after all files finish (no partial
// cross-file resolution, per §5). A per-file ParseError is logged and the
// file is dropped; it never fails the job.
func (o *Orchestrator) parseFiles(ctx context.Context, repoRoot string, relPaths []string) []*model.ParsedFile {
	results := make([]*model.ParsedFile, len(relPaths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, relPath := range relPaths {
		i, relPath := i, relPath
		g.Go(func() error {
			content, err := walker.ReadFile(filepath.Join(repoRoot, relPath))
			if err != nil {
				o.logger.Warn(ingesterrors.ParseError(err, relPath).Error())
				return nil
			}
			pf, err := treesitter.ParseFile(relPath, content)
			if err != nil {
				o.logger.Warn(err.Error())
				return nil
			}
			results[i] = pf
			return nil
		})
	}
	g.Wait()

	files := make([]*model.ParsedFile, 0, len(results))
	for _, pf := range results {
		if pf != nil {
			files = append(files, pf)
		}
	}
	return files
}

// runAnalyzers runs C4-C7 in declared order. Each is optional: a failure is
// logged and that enrichment is simply absent.
func (o *Orchestrator) runAnalyzers(ctx context.Context, repoRoot string, files []*model.ParsedFile) (
	contributions map[string]*model.FileContribution,
	boundaries []model.Boundary,
	libraries []model.Library,
	endpointLinks []comm.EndpointLink,
	rpcCalls []model.RpcCall,
	queueTopics []model.QueueTopic,
	composeServices []model.ComposeService,
	endpoints []model.Endpoint,
) {
	if result, err := gitanalyzer.Analyze(ctx, repoRoot, maxCommits); err != nil {
		o.logger.Warn(ingesterrors.OptionalAnalyzerErrorf(err, "git analysis failed").Error())
	} else {
		contributions = result.Contributions
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	boundaries = boundary.Detect(repoRoot, paths)

	var err error
	libraries, err = manifest.Scan(repoRoot)
	if err != nil {
		o.logger.Warn(ingesterrors.OptionalAnalyzerErrorf(err, "manifest scan failed").Error())
	}

	for _, f := range files {
		content, readErr := walker.ReadFile(filepath.Join(repoRoot, f.Path))
		if readErr != nil {
			continue
		}
		endpoints = append(endpoints, comm.DetectHTTPEndpoints(content, f.Path)...)
		rpcCalls = append(rpcCalls, comm.DetectRpcCalls(content, f.Imports, f.Path)...)
		if strings.HasSuffix(f.Path, ".proto") {
			rpcCalls = append(rpcCalls, comm.ScanProtoServices(content)...)
		}
		queueTopics = append(queueTopics, comm.DetectQueueTopics(content, f.Path)...)
		if isComposeFile(f.Path) {
			composeServices = append(composeServices, comm.ParseComposeFile(content)...)
		}
	}
	endpointLinks = comm.LinkEndpointsToCompose(endpoints, composeServices)

	return
}

func isComposeFile(path string) bool {
	base := lastSegment(path)
	return base == "docker-compose.yml" || base == "docker-compose.yaml"
}

func lastSegment(path string) string {
	if idx := strings.LastIndex(path, "/"); idx != -1 {
		return path[idx+1:]
	}
	return path
}

func dedupEndpoints(endpoints []model.Endpoint) []model.Endpoint {
	seen := make(map[model.Endpoint]struct{})
	var out []model.Endpoint
	for _, e := range endpoints {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func summarize(files []*model.ParsedFile, graph *depgraph.Graph, incremental bool, job persist.Job) statusclient.ResultSummary {
	languages := make(map[string]int)
	totalFunctions, totalClasses := 0, 0
	for _, f := range files {
		languages[f.Language]++
		totalFunctions += len(f.Functions)
		totalClasses += len(f.Classes)
		for _, c := range f.Classes {
			totalFunctions += len(c.Methods)
		}
	}

	summary := statusclient.ResultSummary{
		TotalFiles:      len(files),
		TotalFunctions:  totalFunctions,
		TotalClasses:    totalClasses,
		Dependencies:    len(graph.Edges),
		ComplexityScore: 0.0,
		Languages:       languages,
	}

	if incremental {
		summary.GraphPatch = buildGraphPatch(job)
	}

	return summary
}

// buildGraphPatch normalizes the nodes and edges touched by an incremental
// run into the patch payload reported alongside the job's completion.
func buildGraphPatch(job persist.Job) *statusclient.GraphPatch {
	patch := &statusclient.GraphPatch{}

	for _, f := range job.Files {
		patch.Nodes = append(patch.Nodes, map[string]any{"kind": "File", "path": f.Path})
		for _, c := range f.Classes {
			patch.Nodes = append(patch.Nodes, map[string]any{"kind": "Class", "id": f.Path + "::" + c.Name})
		}
		for _, fn := range f.Functions {
			patch.Nodes = append(patch.Nodes, map[string]any{"kind": "Function", "id": f.Path + "::" + fn.Name})
		}
	}
	for _, p := range job.ChangedFiles {
		patch.Edges = append(patch.Edges, map[string]any{"kind": "changed", "path": p})
	}
	for _, p := range job.RemovedFiles {
		patch.Edges = append(patch.Edges, map[string]any{"kind": "removed", "path": p})
	}

	sort.Slice(patch.Nodes, func(i, j int) bool {
		return fmt.Sprint(patch.Nodes[i]) < fmt.Sprint(patch.Nodes[j])
	})

	return patch
}

// Package persist implements the graph persistor (C8): a transactional,
// batched writer that upserts nodes and edges into Neo4j with idempotent
// MERGE keys, supporting both full and incremental ingest modes.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/coderisk/ingestworker/internal/comm"
	"github.com/coderisk/ingestworker/internal/depgraph"
	"github.com/coderisk/ingestworker/internal/model"
)

// Config controls batching behavior; DefaultConfig matches the spec's
// default batch size of 500 rows per UNWIND.
type Config struct {
	BatchSize int
}

func DefaultConfig() Config {
	return Config{BatchSize: 500}
}

// Persistor owns a Neo4j driver for the worker's lifetime.
type Persistor struct {
	driver   neo4j.DriverWithContext
	database string
	config   Config
	logger   *slog.Logger
}

// New connects to Neo4j and verifies connectivity before returning.
func New(ctx context.Context, uri, user, password, database string, config Config) (*Persistor, error) {
	if uri == "" || user == "" || password == "" {
		return nil, fmt.Errorf("neo4j credentials missing")
	}
	if database == "" {
		database = "neo4j"
	}

	driver, err := neo4j.NewDriverWithContext(uri,
		neo4j.BasicAuth(user, password, ""),
		func(cfg *neo4j.Config) {
			cfg.MaxConnectionPoolSize = 50
			cfg.ConnectionAcquisitionTimeout = 60 * time.Second
			cfg.MaxConnectionLifetime = time.Hour
			cfg.SocketConnectTimeout = 5 * time.Second
		})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j at %s: %w", uri, err)
	}

	return &Persistor{
		driver:   driver,
		database: database,
		config:   config,
		logger:   slog.Default().With("component", "persist"),
	}, nil
}

func (p *Persistor) Close(ctx context.Context) error {
	return p.driver.Close(ctx)
}

// Job bundles every artifact produced by one ingestion run, ready to persist.
type Job struct {
	JobID  string
	RepoID string

	Files           []*model.ParsedFile
	Contributions   map[string]*model.FileContribution
	Graph           *depgraph.Graph
	Libraries       []model.Library
	Boundaries      []model.Boundary
	Endpoints       []model.Endpoint
	RpcCalls        []model.RpcCall
	QueueTopics     []model.QueueTopic
	ComposeServices []model.ComposeService
	EndpointLinks   []comm.EndpointLink

	Incremental  bool
	ChangedFiles []string
	RemovedFiles []string
}

// Persist runs the full transactional write for one job: job-node merge,
// incremental deletes (if applicable), node upserts, then edge upserts, all
// inside a single managed transaction. Any batch error rolls back the whole
// write and is returned to the orchestrator as a PersistenceError.
func (p *Persistor) Persist(ctx context.Context, job Job) error {
	session := p.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: p.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (j:Job {id: $job_id, repo_id: $repo_id})
			SET j.status = 'COMPLETED', j.timestamp = timestamp()
		`, map[string]any{"job_id": job.JobID, "repo_id": job.RepoID}); err != nil {
			return nil, fmt.Errorf("merge job node: %w", err)
		}

		if job.Incremental {
			if err := p.deleteChangedAndRemoved(ctx, tx, job.RepoID, job.ChangedFiles, job.RemovedFiles); err != nil {
				return nil, err
			}
		}

		if err := p.upsertNodes(ctx, tx, job); err != nil {
			return nil, err
		}
		if err := p.upsertEdges(ctx, tx, job); err != nil {
			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("persist transaction: %w", err)
	}
	return nil
}

func (p *Persistor) deleteChangedAndRemoved(ctx context.Context, tx neo4j.ManagedTransaction, repoID string, changed, removed []string) error {
	paths := make([]string, 0, len(changed)+len(removed))
	paths = append(paths, changed...)
	paths = append(paths, removed...)
	if len(paths) == 0 {
		return nil
	}

	_, err := tx.Run(ctx, `
		UNWIND $paths AS p
		MATCH (f:File {repo_id: $repo_id, path: p})
		OPTIONAL MATCH (f)-[:Defines]->(c)
		OPTIONAL MATCH (c)-[:Contains]->(m:Function)
		DETACH DELETE f, c, m
	`, map[string]any{"paths": paths, "repo_id": repoID})
	if err != nil {
		return fmt.Errorf("incremental delete: %w", err)
	}
	return nil
}

func (p *Persistor) upsertNodes(ctx context.Context, tx neo4j.ManagedTransaction, job Job) error {
	nodeBatches := []struct {
		label string
		merge string
		rows  []map[string]any
	}{
		{"File", `MERGE (n:File {repo_id: $repo_id, path: row.path}) SET n += row`, fileRows(job.Files, job.Contributions)},
		{"Class", `MERGE (n:Class {repo_id: $repo_id, id: row.id}) SET n += row`, classRows(job.Files)},
		{"Function", `MERGE (n:Function {repo_id: $repo_id, id: row.id}) SET n += row`, functionRows(job.Files)},
		{"Module", `MERGE (n:Module {repo_id: $repo_id, name: row.name})`, moduleRows(job.Graph)},
		{"Boundary", `MERGE (n:Boundary {repo_id: $repo_id, id: row.id}) SET n += row`, boundaryRows(job.Boundaries)},
		{
			"Library",
			`MERGE (n:Library {repo_id: $repo_id, name: row.name})
			 SET n.source_manifest = row.source_manifest
			 SET n.version = CASE WHEN row.version <> '' THEN row.version ELSE n.version END`,
			libraryRows(job.Libraries),
		},
		{"Table", `MERGE (n:Table {repo_id: $repo_id, name: row.name})`, tableRows(job.Files)},
		{"Service", `MERGE (n:Service {repo_id: $repo_id, target: row.target, protocol: row.protocol})`, serviceRows(job.Files)},
		{"Endpoint", `MERGE (n:Endpoint {repo_id: $repo_id, url: row.url, method: row.method}) SET n.host = row.host`, endpointRows(job.Endpoints)},
		{"RpcService", `MERGE (n:RpcService {repo_id: $repo_id, target: row.target})`, rpcServiceRows(job.RpcCalls)},
		{"MessageQueue", `MERGE (n:MessageQueue {repo_id: $repo_id, topic: row.topic})`, messageQueueRows(job.QueueTopics)},
		{"ComposeService", `MERGE (n:ComposeService {repo_id: $repo_id, name: row.name}) SET n.ports = row.ports`, composeServiceRows(job.ComposeServices)},
	}

	for _, b := range nodeBatches {
		if err := p.runBatched(ctx, tx, b.merge, b.rows, job.RepoID); err != nil {
			return fmt.Errorf("upsert %s nodes: %w", b.label, err)
		}
	}
	return nil
}

func (p *Persistor) upsertEdges(ctx context.Context, tx neo4j.ManagedTransaction, job Job) error {
	edgeBatches := []struct {
		kind  string
		merge string
		rows  []map[string]any
	}{
		{
			"Defines",
			`MATCH (a:File {repo_id: $repo_id, path: row.from_path})
			 MATCH (b {repo_id: $repo_id, id: row.to_id})
			 MERGE (a)-[:Defines]->(b)`,
			definesRows(job.Files),
		},
		{
			"Contains",
			`MATCH (a:Class {repo_id: $repo_id, id: row.class_id})
			 MATCH (b:Function {repo_id: $repo_id, id: row.func_id})
			 MERGE (a)-[:Contains]->(b)`,
			containsRows(job.Files),
		},
		{
			"Calls",
			`MATCH (a:Function {repo_id: $repo_id, id: row.from_id})
			 MATCH (b:Function {repo_id: $repo_id, id: row.to_id})
			 MERGE (a)-[:Calls]->(b)`,
			callsRows(job.Graph),
		},
		{
			"Imports",
			`MATCH (a:File {repo_id: $repo_id, path: row.path})
			 MATCH (b:Module {repo_id: $repo_id, name: row.module})
			 MERGE (a)-[:Imports]->(b)`,
			importsRows(job.Files),
		},
		{
			"Inherits",
			`MATCH (a:Class {repo_id: $repo_id, id: row.from_id})
			 MATCH (b {repo_id: $repo_id})
			 WHERE (row.to_is_module AND b:Module AND b.name = row.to_module)
			    OR (NOT row.to_is_module AND b:Class AND b.id = row.to_id)
			 MERGE (a)-[e:Inherits]->(b)
			 SET e.kind = row.kind`,
			inheritsRows(job.Graph),
		},
		{
			"BelongsTo",
			`MATCH (a:File {repo_id: $repo_id, path: row.path})
			 MATCH (b:Boundary {repo_id: $repo_id, id: row.boundary_id})
			 MERGE (a)-[:BelongsTo]->(b)`,
			belongsToRows(job.Boundaries),
		},
		{
			"DependsOn (library)",
			`MATCH (a:File {repo_id: $repo_id, path: row.path})
			 MATCH (b:Library {repo_id: $repo_id, name: row.library})
			 MERGE (a)-[e:DependsOn {type: 'library'}]->(b)
			 SET e.version = row.version`,
			dependsOnLibraryRows(job.Files, job.Libraries),
		},
		{
			"UsesTable",
			`MATCH (a:File {repo_id: $repo_id, path: row.path})
			 MATCH (b:Table {repo_id: $repo_id, name: row.table})
			 MERGE (a)-[:UsesTable]->(b)`,
			usesTableRows(job.Files),
		},
		{
			"CallsService",
			`MATCH (a:File {repo_id: $repo_id, path: row.path})
			 MATCH (b:Service {repo_id: $repo_id, target: row.target, protocol: row.protocol})
			 MERGE (a)-[:CallsService]->(b)`,
			callsServiceRows(job.Files),
		},
		{
			"CallsEndpoint",
			`MATCH (a:File {repo_id: $repo_id, path: row.path})
			 MATCH (b:Endpoint {repo_id: $repo_id, url: row.url, method: row.method})
			 MERGE (a)-[:CallsEndpoint]->(b)`,
			callsEndpointRows(job.Endpoints),
		},
		{
			"CallsRpc",
			`MATCH (a:File {repo_id: $repo_id, path: row.path})
			 MATCH (b:RpcService {repo_id: $repo_id, target: row.target})
			 MERGE (a)-[:CallsRpc]->(b)`,
			callsRpcRows(job.RpcCalls),
		},
		{
			"PublishesTo",
			`MATCH (a:File {repo_id: $repo_id, path: row.path})
			 MATCH (b:MessageQueue {repo_id: $repo_id, topic: row.topic})
			 MERGE (a)-[:PublishesTo]->(b)`,
			queueEdgeRows(job.QueueTopics, true),
		},
		{
			"ConsumesFrom",
			`MATCH (a:File {repo_id: $repo_id, path: row.path})
			 MATCH (b:MessageQueue {repo_id: $repo_id, topic: row.topic})
			 MERGE (a)-[:ConsumesFrom]->(b)`,
			queueEdgeRows(job.QueueTopics, false),
		},
		{
			"ExposedBy",
			`MATCH (a:Endpoint {repo_id: $repo_id, url: row.url, method: row.method})
			 MATCH (b:ComposeService {repo_id: $repo_id, name: row.service})
			 MERGE (a)-[:ExposedBy]->(b)`,
			exposedByRows(job.EndpointLinks),
		},
		{
			"DependsOn (file)",
			`MATCH (a:File {repo_id: $repo_id, path: row.from_path})
			 MATCH (b:File {repo_id: $repo_id, path: row.to_path})
			 MERGE (a)-[e:DependsOn {import_path: row.import_path}]->(b)`,
			fileDependsOnRows(job.Files),
		},
	}

	for _, b := range edgeBatches {
		if err := p.runBatched(ctx, tx, b.merge, b.rows, job.RepoID); err != nil {
			return fmt.Errorf("upsert %s edges: %w", b.kind, err)
		}
	}
	return nil
}

// runBatched splits rows into config.BatchSize chunks and runs one UNWIND
// query per chunk inside the caller's transaction.
func (p *Persistor) runBatched(ctx context.Context, tx neo4j.ManagedTransaction, mergeClause string, rows []map[string]any, repoID string) error {
	if len(rows) == 0 {
		return nil
	}
	query := "UNWIND $rows AS row\n" + mergeClause

	batchSize := p.config.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := tx.Run(ctx, query, map[string]any{"rows": rows[i:end], "repo_id": repoID}); err != nil {
			return err
		}
	}
	return nil
}

package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/georgeGeorgakakos/optimusddc/pkg/config"
	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/optimusdb"
	"github.com/georgeGeorgakakos/optimusddc/pkg/uri"
)

// CommandExecutor is the backend surface the services need. Satisfied by
// optimusdb.Client; tests substitute fakes.
type CommandExecutor interface {
	Execute(ctx context.Context, query string) (optimusdb.RecordSet, error)
	ExecuteOn(ctx context.Context, nodeURL, query string) (optimusdb.RecordSet, error)
}

// DiscoveryService enumerates the catalog across all configured backend
// nodes. Nodes are queried concurrently; an unreachable node contributes
// nothing and never fails the whole sweep.
type DiscoveryService interface {
	DiscoverDatasets(ctx context.Context) []models.DiscoveredDataset
}

type discoveryService struct {
	executor CommandExecutor
	nodes    []string
	timeout  time.Duration
	logger   *zap.Logger
}

func NewDiscoveryService(executor CommandExecutor, cfg config.BackendConfig, logger *zap.Logger) DiscoveryService {
	return &discoveryService{
		executor: executor,
		nodes:    cfg.Nodes,
		timeout:  cfg.DiscoveryTimeout,
		logger:   logger,
	}
}

func (s *discoveryService) DiscoverDatasets(ctx context.Context) []models.DiscoveredDataset {
	perNode := make([][]models.DiscoveredDataset, len(s.nodes))

	g, gctx := errgroup.WithContext(ctx)
	for i, node := range s.nodes {
		i, node := i, node
		g.Go(func() error {
			nodeCtx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			records, err := s.executor.ExecuteOn(nodeCtx, node, "select * from datacatalog;")
			if err != nil {
				s.logger.Warn("discovery node skipped",
					zap.String("node", node),
					zap.Error(err))
				return nil
			}
			perNode[i] = datasetsFromRecords(records, node)
			return nil
		})
	}
	// Workers only ever return nil; partial results are the contract.
	_ = g.Wait()

	var datasets []models.DiscoveredDataset
	for _, chunk := range perNode {
		datasets = append(datasets, chunk...)
	}
	s.logger.Info("catalog discovery complete",
		zap.Int("nodes", len(s.nodes)),
		zap.Int("datasets", len(datasets)))
	return datasets
}

func datasetsFromRecords(records optimusdb.RecordSet, node string) []models.DiscoveredDataset {
	datasets := make([]models.DiscoveredDataset, 0, len(records))
	for _, rec := range records {
		schema := rec.String("metadata_type")
		if schema == "" {
			schema = "default"
		}
		database := rec.String("component")
		if database == "" {
			database = uri.DefaultDatabase
		}
		name := rec.String("name")
		if name == "" {
			name = "unknown"
		}
		description := rec.String("description")
		if description == "" {
			description = "Discovered dataset " + name + " from " + node
		}

		columnNames := rec.FieldNames()
		var tags []string
		if raw := rec.String("tags"); raw != "" {
			tags = splitCommaList(raw)
		}
		owner := rec.String("created_by")
		if owner == "" {
			owner = "system"
		}

		datasets = append(datasets, models.DiscoveredDataset{
			Type:                 "table",
			Key:                  uri.Encode(database, schema, name),
			Name:                 schema + "." + name,
			Schema:               schema,
			Cluster:              node,
			Database:             database,
			Description:          description,
			ColumnNames:          columnNames,
			Tags:                 tags,
			Owners:               []string{owner},
			LastUpdatedTimestamp: time.Now().Unix(),
			Preview:              rec,
			ResourceType:         "table",
		})
	}
	return datasets
}

// DeduplicateDatasets keeps the first dataset seen per key, preserving order.
func DeduplicateDatasets(datasets []models.DiscoveredDataset) []models.DiscoveredDataset {
	seen := map[string]bool{}
	unique := make([]models.DiscoveredDataset, 0, len(datasets))
	for _, ds := range datasets {
		if ds.Key == "" || seen[ds.Key] {
			continue
		}
		seen[ds.Key] = true
		unique = append(unique, ds)
	}
	return unique
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Package indexer periodically publishes discovered catalog tables to the
// external search service so free-text search stays warm without inline
// indexing on the request path.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/config"
	"github.com/georgeGeorgakakos/optimusddc/pkg/mapper"
	"github.com/georgeGeorgakakos/optimusddc/pkg/metrics"
	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/retry"
	"github.com/georgeGeorgakakos/optimusddc/pkg/services"
	"github.com/georgeGeorgakakos/optimusddc/pkg/uri"
)

// Stats tracks indexing runs for the status endpoint.
type Stats struct {
	TotalRuns        int        `json:"total_runs"`
	SuccessfulRuns   int        `json:"successful_runs"`
	FailedRuns       int        `json:"failed_runs"`
	LastRunTime      *time.Time `json:"last_run_time"`
	LastSuccessTime  *time.Time `json:"last_success_time"`
	DocumentsIndexed int        `json:"documents_indexed"`
}

// Indexer runs scheduled discovery sweeps and pushes one search document per
// table to the search service. Start and Stop bound its lifecycle; a run
// failure never takes the process down.
type Indexer struct {
	discovery services.DiscoveryService
	mapper    *mapper.Mapper
	client    *http.Client
	baseURL   string
	interval  time.Duration
	logger    *zap.Logger

	cron    *cron.Cron
	entryID cron.EntryID

	mu    sync.Mutex
	stats Stats
}

func New(discovery services.DiscoveryService, m *mapper.Mapper, cfg config.IndexerConfig, logger *zap.Logger) *Indexer {
	return &Indexer{
		discovery: discovery,
		mapper:    m,
		client:    &http.Client{Timeout: 10 * time.Second},
		baseURL:   cfg.SearchServiceURL,
		interval:  cfg.Interval,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules periodic runs and fires one immediately in the background.
func (ix *Indexer) Start() error {
	spec := fmt.Sprintf("@every %s", ix.interval)
	entryID, err := ix.cron.AddFunc(spec, ix.RunOnce)
	if err != nil {
		return fmt.Errorf("schedule indexer: %w", err)
	}
	ix.entryID = entryID
	ix.cron.Start()
	go ix.RunOnce()
	ix.logger.Info("background indexer started",
		zap.Duration("interval", ix.interval),
		zap.String("search_service", ix.baseURL))
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (ix *Indexer) Stop() {
	ctx := ix.cron.Stop()
	<-ctx.Done()
	ix.logger.Info("background indexer stopped")
}

// Stats returns a copy of the run counters.
func (ix *Indexer) Stats() Stats {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.stats
}

// RunOnce performs a single discovery-and-publish sweep.
func (ix *Indexer) RunOnce() {
	ix.mu.Lock()
	ix.stats.TotalRuns++
	now := time.Now()
	ix.stats.LastRunTime = &now
	ix.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	datasets := services.DeduplicateDatasets(ix.discovery.DiscoverDatasets(ctx))
	if len(datasets) == 0 {
		ix.logger.Warn("indexing run found no datasets")
		ix.finishRun(false, 0)
		return
	}

	indexed := 0
	for _, ds := range datasets {
		if err := ix.publish(ctx, ix.documentFor(ds)); err != nil {
			ix.logger.Warn("document publish failed",
				zap.String("key", ds.Key),
				zap.Error(err))
			continue
		}
		indexed++
	}

	ix.finishRun(indexed > 0, indexed)
	ix.logger.Info("indexing run complete",
		zap.Int("datasets", len(datasets)),
		zap.Int("indexed", indexed))
}

func (ix *Indexer) finishRun(ok bool, indexed int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.stats.DocumentsIndexed = indexed
	if ok {
		ix.stats.SuccessfulRuns++
		now := time.Now()
		ix.stats.LastSuccessTime = &now
		metrics.IndexerRuns.WithLabelValues("ok").Inc()
	} else {
		ix.stats.FailedRuns++
		metrics.IndexerRuns.WithLabelValues("failed").Inc()
	}
}

func (ix *Indexer) documentFor(ds models.DiscoveredDataset) models.SearchDocument {
	id := uri.Decode(ds.Key)
	table := ix.mapper.Table(ds.Key, id, ds.Preview, nil)
	doc := ix.mapper.SearchDocument(table)
	// Discovery already denormalizes the listing fields; prefer them over
	// the per-record defaults so search and browse agree.
	doc.Name = ds.Name
	doc.Cluster = ds.Cluster
	doc.Description = ds.Description
	return doc
}

// publish POSTs one document envelope, retrying transient failures.
func (ix *Indexer) publish(ctx context.Context, doc models.SearchDocument) error {
	body, err := json.Marshal(map[string]any{
		"resource_type": "table",
		"document":      doc,
	})
	if err != nil {
		return fmt.Errorf("encode search document: %w", err)
	}

	return retry.DoIfRetryable(ctx, nil, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			ix.baseURL+"/document", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := ix.client.Do(req)
		if err != nil {
			return fmt.Errorf("post document: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("search service returned %d", resp.StatusCode)
		}
		return nil
	})
}

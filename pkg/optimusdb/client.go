package optimusdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/apperrors"
	"github.com/georgeGeorgakakos/optimusddc/pkg/config"
	"github.com/georgeGeorgakakos/optimusddc/pkg/metrics"
)

// commandPath is the backend's single command endpoint.
const commandPath = "/swarmkb/command"

// commandEnvelope is the fixed request body the backend requires. Only the
// sqldml field varies; everything else is protocol boilerplate the backend
// rejects requests without.
type commandEnvelope struct {
	Method         commandMethod    `json:"method"`
	Args           []string         `json:"args"`
	DSType         string           `json:"dstype"`
	SQLDML         string           `json:"sqldml"`
	GraphTraversal []map[string]any `json:"graph_traversal"`
	Criteria       []any            `json:"criteria"`
}

type commandMethod struct {
	ArgCount int    `json:"argcnt"`
	Cmd      string `json:"cmd"`
}

func newCommandEnvelope(query string) commandEnvelope {
	return commandEnvelope{
		Method:         commandMethod{ArgCount: 2, Cmd: "sqldml"},
		Args:           []string{"dummy1", "dummy2"},
		DSType:         "dsswres",
		SQLDML:         query,
		GraphTraversal: []map[string]any{{}},
		Criteria:       []any{},
	}
}

// Client issues command requests against OptimusDB nodes and hands replies to
// the normalizer. It is stateless across calls; the underlying http.Client
// reuses connections as an optimization only.
type Client struct {
	baseURL    string
	httpClient *http.Client
	normalizer *Normalizer
	logger     *zap.Logger
}

// NewClient builds a client with separate connect and read timeouts per the
// backend config.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.ReadTimeout,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				MaxIdleConnsPerHost: 4,
			},
		},
		normalizer: NewNormalizer(logger),
		logger:     logger,
	}
}

// BaseURL reports the primary node this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Execute runs a query against the primary node. See ExecuteOn for the error
// contract.
func (c *Client) Execute(ctx context.Context, query string) (RecordSet, error) {
	return c.ExecuteOn(ctx, c.baseURL, query)
}

// ExecuteOn runs a query against a specific node. Transport failures return
// an empty set with ErrUnavailable and no retry; retries, if any, belong to
// callers. A non-success status degrades to an empty set with a logged
// warning and a nil error. Reply interpretation is entirely the normalizer's:
// its soft errors (ErrMalformedPayload, *BackendError) pass through alongside
// the empty set.
func (c *Client) ExecuteOn(ctx context.Context, nodeURL, query string) (RecordSet, error) {
	body, err := json.Marshal(newCommandEnvelope(query))
	if err != nil {
		return RecordSet{}, fmt.Errorf("encode command envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, nodeURL+commandPath, bytes.NewReader(body))
	if err != nil {
		return RecordSet{}, fmt.Errorf("build command request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendCommandDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendCommands.WithLabelValues(nodeURL, "unavailable").Inc()
		c.logger.Warn("backend unreachable",
			zap.String("node", nodeURL),
			zap.Error(err))
		return RecordSet{}, fmt.Errorf("%w: %s: %v", apperrors.ErrUnavailable, nodeURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendCommands.WithLabelValues(nodeURL, "unavailable").Inc()
		c.logger.Warn("backend reply read failed",
			zap.String("node", nodeURL),
			zap.Error(err))
		return RecordSet{}, fmt.Errorf("%w: %s: %v", apperrors.ErrUnavailable, nodeURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendCommands.WithLabelValues(nodeURL, "degraded").Inc()
		c.logger.Warn("backend returned non-success status",
			zap.String("node", nodeURL),
			zap.Int("status", resp.StatusCode))
		return RecordSet{}, nil
	}

	records, err := c.normalizer.Normalize(raw)
	if err != nil {
		metrics.BackendCommands.WithLabelValues(nodeURL, "degraded").Inc()
		return records, err
	}
	metrics.BackendCommands.WithLabelValues(nodeURL, "ok").Inc()
	return records, nil
}

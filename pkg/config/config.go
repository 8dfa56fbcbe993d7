package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the catalog adapter.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5002"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Backend holds OptimusDB connection settings.
	Backend BackendConfig `yaml:"backend"`

	// Search holds search/pagination settings.
	Search SearchConfig `yaml:"search"`

	// Indexer holds background indexer settings.
	Indexer IndexerConfig `yaml:"indexer"`
}

// BackendConfig holds OptimusDB command endpoint settings.
type BackendConfig struct {
	// BaseURL is the primary OptimusDB node, e.g. http://optimusdb1:8089.
	BaseURL string `yaml:"base_url" env:"OPTIMUSDB_API_URL" env-default:"http://localhost:8089"`

	// NodesStr is a comma-separated list of node base URLs used for federated
	// dataset discovery. Falls back to BaseURL when empty.
	NodesStr string `yaml:"nodes" env:"OPTIMUSDB_NODES" env-default:""`

	// Nodes is the parsed form of NodesStr (not from config file).
	Nodes []string `yaml:"-"`

	ConnectTimeout   time.Duration `yaml:"connect_timeout" env:"OPTIMUSDB_CONNECT_TIMEOUT" env-default:"3s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" env:"OPTIMUSDB_READ_TIMEOUT" env-default:"10s"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout" env:"OPTIMUSDB_DISCOVERY_TIMEOUT" env-default:"5s"`
}

// SearchConfig holds search behavior settings.
type SearchConfig struct {
	// PageSize is the fixed number of results per search page.
	PageSize int `yaml:"page_size" env:"SEARCH_PAGE_SIZE" env-default:"10"`

	// SuggestLimit caps the number of fuzzy name suggestions returned.
	SuggestLimit int `yaml:"suggest_limit" env:"SEARCH_SUGGEST_LIMIT" env-default:"10"`
}

// IndexerConfig holds background search-index publisher settings.
type IndexerConfig struct {
	Enabled  bool          `yaml:"enabled" env:"INDEXER_ENABLED" env-default:"false"`
	Interval time.Duration `yaml:"interval" env:"INDEXER_INTERVAL" env-default:"10m"`

	// SearchServiceURL is the base URL of the external search service that
	// consumes table documents on its /document endpoint.
	SearchServiceURL string `yaml:"search_service_url" env:"SEARCHSERVICE_BASE" env-default:""`
}

// Load reads configuration from config.yaml (if present) and environment
// variables, with environment taking precedence.
func Load(version string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	cfg.Version = version
	cfg.Backend.BaseURL = normalizeURL(cfg.Backend.BaseURL)
	cfg.Backend.Nodes = parseNodes(cfg.Backend.NodesStr, cfg.Backend.BaseURL)

	if cfg.Search.PageSize <= 0 {
		return nil, fmt.Errorf("search page_size must be positive, got %d", cfg.Search.PageSize)
	}

	return cfg, nil
}

// normalizeURL ensures the URL carries a scheme; the deployment environment
// sometimes hands over bare hostnames.
func normalizeURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if u == "" {
		return u
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}
	return u
}

func parseNodes(s, fallback string) []string {
	var nodes []string
	for _, part := range strings.Split(s, ",") {
		if u := normalizeURL(part); u != "" {
			nodes = append(nodes, u)
		}
	}
	if len(nodes) == 0 && fallback != "" {
		nodes = []string{fallback}
	}
	return nodes
}

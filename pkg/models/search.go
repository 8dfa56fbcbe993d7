package models

// DiscoveredDataset is the intermediate table shape produced by federated
// catalog discovery. It carries enough denormalized fields for ranking and
// indexing without another backend round-trip.
type DiscoveredDataset struct {
	Type                 string         `json:"type"`
	Key                  string         `json:"key"`
	Name                 string         `json:"name"`
	Schema               string         `json:"schema"`
	Cluster              string         `json:"cluster"`
	Database             string         `json:"database"`
	Description          string         `json:"description"`
	ColumnNames          []string       `json:"column_names"`
	Tags                 []string       `json:"tags"`
	Owners               []string       `json:"owners"`
	LastUpdatedTimestamp int64          `json:"last_updated_timestamp"`
	Preview              map[string]any `json:"preview"`
	ResourceType         string         `json:"resource_type"`
}

// TableSearchResult is one ranked table hit.
type TableSearchResult struct {
	Key                  string  `json:"key"`
	Database             string  `json:"database"`
	Cluster              string  `json:"cluster"`
	Schema               string  `json:"schema"`
	Name                 string  `json:"name"`
	Description          string  `json:"description"`
	Tags                 []Tag   `json:"tags"`
	Badges               []Badge `json:"badges"`
	LastUpdatedTimestamp int64   `json:"last_updated_timestamp"`
}

// TableSearchResponse is a single page of ranked table hits.
type TableSearchResponse struct {
	PageIndex    int                 `json:"page_index"`
	TotalResults int                 `json:"total_results"`
	Results      []TableSearchResult `json:"results"`
}

// UserSearchResponse is a single page of user hits.
type UserSearchResponse struct {
	PageIndex    int    `json:"page_index"`
	TotalResults int    `json:"total_results"`
	Results      []User `json:"results"`
}

// DashboardSearchResponse is a single page of dashboard hits.
type DashboardSearchResponse struct {
	PageIndex    int                `json:"page_index"`
	TotalResults int                `json:"total_results"`
	Results      []DashboardSummary `json:"results"`
}

// Searchable resource types. ResourceAll fans a unified search out to every
// type.
const (
	ResourceTable     = "table"
	ResourceUser      = "user"
	ResourceDashboard = "dashboard"
	ResourceAll       = "all"
)

// SearchRequest is one unified search call.
type SearchRequest struct {
	Resource  string `json:"resource"`
	QueryTerm string `json:"query_term"`
	PageIndex int    `json:"page_index"`
}

// UnifiedSearchResponse bundles per-type results; only the requested
// sections are populated.
type UnifiedSearchResponse struct {
	PageIndex  int                      `json:"page_index"`
	Tables     *TableSearchResponse     `json:"tables,omitempty"`
	Users      *UserSearchResponse      `json:"users,omitempty"`
	Dashboards *DashboardSearchResponse `json:"dashboards,omitempty"`
}

// SearchDocument is the flattened table shape pushed to the external search
// service during index runs.
type SearchDocument struct {
	Name                 string   `json:"name"`
	Schema               string   `json:"schema"`
	Database             string   `json:"database"`
	Cluster              string   `json:"cluster"`
	Description          string   `json:"description"`
	ColumnNames          []string `json:"column_names"`
	Tags                 []string `json:"tags"`
	Badges               []string `json:"badges"`
	Key                  string   `json:"key"`
	LastUpdatedTimestamp int64    `json:"last_updated_timestamp"`
	ResourceType         string   `json:"resource_type"`
}

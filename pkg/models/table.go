package models

// Badge categories produced during record mapping.
const (
	BadgeCategoryStatus   = "status"
	BadgeCategoryPriority = "priority"
	BadgeCategoryDefault  = "default"
)

// Tag attached to a table. TagType distinguishes user tags from the
// badge-like "default" tags some frontends render differently.
type Tag struct {
	TagName string `json:"tag_name"`
	TagType string `json:"tag_type"`
}

// TagUsage is the catalog-wide tag listing shape.
type TagUsage struct {
	TagName  string `json:"tag_name"`
	TagCount int    `json:"tag_count"`
}

// Badge is a small visual marker derived from record status and priority.
type Badge struct {
	BadgeName string `json:"badge_name"`
	Category  string `json:"category"`
}

// ColumnStat is a single named statistic for a column, such as a sampled
// value captured during catalog ingestion.
type ColumnStat struct {
	StatType   string `json:"stat_type"`
	StatVal    string `json:"stat_val"`
	StartEpoch int64  `json:"start_epoch"`
	EndEpoch   int64  `json:"end_epoch"`
}

// Column describes one column of a catalog table. SortOrder is dense and
// stable across calls for the same record shape.
type Column struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ColType     string       `json:"col_type"`
	SortOrder   int          `json:"sort_order"`
	Stats       []ColumnStat `json:"stats"`
	Badges      []Badge      `json:"badges"`
}

// ProgrammaticDescription is a machine-derived description line shown
// separately from the editable free-text description.
type ProgrammaticDescription struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Table is the full metadata view of one catalog table.
type Table struct {
	Database    string `json:"database"`
	Cluster     string `json:"cluster"`
	Schema      string `json:"schema"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Description string `json:"description"`

	Tags    []Tag    `json:"tags"`
	Badges  []Badge  `json:"badges"`
	Columns []Column `json:"columns"`
	Owners  []User   `json:"owners"`

	IsView                   bool                      `json:"is_view"`
	LastUpdatedTimestamp     int64                     `json:"last_updated_timestamp"`
	ProgrammaticDescriptions []ProgrammaticDescription `json:"programmatic_descriptions"`
}

// TableSummary is the abbreviated table shape used by popular-table listings
// and search results.
type TableSummary struct {
	Database    string `json:"database"`
	Cluster     string `json:"cluster,omitempty"`
	Schema      string `json:"schema"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Description string `json:"description"`
}

// Summary reduces a full table to its listing shape.
func (t *Table) Summary() TableSummary {
	return TableSummary{
		Database:    t.Database,
		Cluster:     t.Cluster,
		Schema:      t.Schema,
		Name:        t.Name,
		Key:         t.Key,
		Description: t.Description,
	}
}

package models

// Lineage directions accepted by the lineage endpoints.
const (
	LineageDirectionUpstream   = "upstream"
	LineageDirectionDownstream = "downstream"
	LineageDirectionBoth       = "both"
)

// LineageItem is one edge endpoint in a table's lineage graph.
type LineageItem struct {
	Key    string  `json:"key"`
	Level  int     `json:"level"`
	Source string  `json:"source"`
	Badges []Badge `json:"badges"`
}

// Lineage holds both directions for a table. Either list may be empty; the
// directions are stored and updated independently.
type Lineage struct {
	Key                string        `json:"key"`
	Direction          string        `json:"direction"`
	Depth              int           `json:"depth"`
	UpstreamEntities   []LineageItem `json:"upstream_entities"`
	DownstreamEntities []LineageItem `json:"downstream_entities"`
}

package models

// CatalogStatistics summarizes the whole catalog. TotalColumns is an
// estimate when the backend cannot count columns directly.
type CatalogStatistics struct {
	TotalDatasets int   `json:"total_datasets"`
	TotalSchemas  int   `json:"total_schemas"`
	TotalColumns  int   `json:"total_columns"`
	LastUpdated   int64 `json:"last_updated"`
}

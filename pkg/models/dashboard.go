package models

// Dashboard is the full metadata view of one dashboard.
type Dashboard struct {
	URI                        string `json:"uri"`
	Cluster                    string `json:"cluster"`
	GroupName                  string `json:"group_name"`
	GroupURL                   string `json:"group_url"`
	Product                    string `json:"product"`
	Name                       string `json:"name"`
	URL                        string `json:"url"`
	Description                string `json:"description"`
	CreatedTimestamp           int64  `json:"created_timestamp"`
	UpdatedTimestamp           int64  `json:"updated_timestamp"`
	LastSuccessfulRunTimestamp int64  `json:"last_successful_run_timestamp"`
}

// DashboardSummary is the search-result shape for dashboard resources.
type DashboardSummary struct {
	GroupName   string `json:"group_name"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Product     string `json:"product"`
	URL         string `json:"url"`
	URI         string `json:"uri"`
	Cluster     string `json:"cluster"`
}

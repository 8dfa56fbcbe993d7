package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/config"
	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/sqlutil"
)

// SearchService ranks free-text queries against the discovered catalog and
// runs LIKE queries for users and dashboards. No real search index backs
// this; every table search is a fresh discovery sweep plus in-memory
// scoring.
type SearchService interface {
	Search(ctx context.Context, req models.SearchRequest) models.UnifiedSearchResponse
	SearchTables(ctx context.Context, queryTerm string, pageIndex int) models.TableSearchResponse
	SearchUsers(ctx context.Context, queryTerm string, pageIndex int) models.UserSearchResponse
	SearchDashboards(ctx context.Context, queryTerm string, pageIndex int) models.DashboardSearchResponse
	Suggest(ctx context.Context, prefix string) []string
}

type searchService struct {
	executor     CommandExecutor
	discovery    DiscoveryService
	pageSize     int
	suggestLimit int
	logger       *zap.Logger
}

func NewSearchService(executor CommandExecutor, discovery DiscoveryService, cfg config.SearchConfig, logger *zap.Logger) SearchService {
	return &searchService{
		executor:     executor,
		discovery:    discovery,
		pageSize:     cfg.PageSize,
		suggestLimit: cfg.SuggestLimit,
		logger:       logger,
	}
}

// Search dispatches one request across resource types. An empty or "all"
// resource fans out to every type.
func (s *searchService) Search(ctx context.Context, req models.SearchRequest) models.UnifiedSearchResponse {
	response := models.UnifiedSearchResponse{PageIndex: req.PageIndex}
	switch req.Resource {
	case models.ResourceTable:
		tables := s.SearchTables(ctx, req.QueryTerm, req.PageIndex)
		response.Tables = &tables
	case models.ResourceUser:
		users := s.SearchUsers(ctx, req.QueryTerm, req.PageIndex)
		response.Users = &users
	case models.ResourceDashboard:
		dashboards := s.SearchDashboards(ctx, req.QueryTerm, req.PageIndex)
		response.Dashboards = &dashboards
	default:
		tables := s.SearchTables(ctx, req.QueryTerm, req.PageIndex)
		users := s.SearchUsers(ctx, req.QueryTerm, req.PageIndex)
		dashboards := s.SearchDashboards(ctx, req.QueryTerm, req.PageIndex)
		response.Tables = &tables
		response.Users = &users
		response.Dashboards = &dashboards
	}
	return response
}

func (s *searchService) SearchTables(ctx context.Context, queryTerm string, pageIndex int) models.TableSearchResponse {
	queryLower := strings.ToLower(strings.TrimSpace(queryTerm))

	datasets := s.discovery.DiscoverDatasets(ctx)
	ranked := RankDatasets(datasets, queryLower)

	page := paginate(ranked, pageIndex, s.pageSize)
	results := make([]models.TableSearchResult, 0, len(page))
	for _, ds := range page {
		tags := make([]models.Tag, 0, len(ds.Tags))
		for _, tag := range ds.Tags {
			tags = append(tags, models.Tag{TagName: tag, TagType: "default"})
		}
		results = append(results, models.TableSearchResult{
			Key:                  ds.Key,
			Database:             ds.Database,
			Cluster:              ds.Cluster,
			Schema:               ds.Schema,
			Name:                 ds.Name,
			Description:          ds.Description,
			Tags:                 tags,
			Badges:               []models.Badge{},
			LastUpdatedTimestamp: ds.LastUpdatedTimestamp,
		})
	}

	s.logger.Info("table search",
		zap.String("query", queryTerm),
		zap.Int("page", pageIndex),
		zap.Int("total", len(ranked)),
		zap.Int("returned", len(results)))

	return models.TableSearchResponse{
		PageIndex:    pageIndex,
		TotalResults: len(ranked),
		Results:      results,
	}
}

func (s *searchService) SearchUsers(ctx context.Context, queryTerm string, pageIndex int) models.UserSearchResponse {
	empty := models.UserSearchResponse{PageIndex: pageIndex, Results: []models.User{}}
	if sqlutil.GuardArguments(map[string]string{"query": queryTerm}) != nil {
		s.logger.Warn("user search rejected", zap.String("query", queryTerm))
		return empty
	}

	query := "select * from users limit 100;"
	if !isWildcard(queryTerm) {
		escaped := sqlutil.Escape(queryTerm)
		query = fmt.Sprintf(
			"select * from users where user_id like '%%%s%%' or email like '%%%s%%' or display_name like '%%%s%%' limit 100;",
			escaped, escaped, escaped)
	}
	records, err := s.executor.Execute(ctx, query)
	if err != nil {
		return empty
	}

	users := make([]models.User, 0, len(records))
	for _, rec := range records {
		users = append(users, models.User{
			Email:       rec.String("email"),
			DisplayName: rec.String("display_name"),
			FullName:    rec.String("display_name"),
			TeamName:    rec.String("team_name"),
			Role:        rec.String("employee_type"),
			IsActive:    true,
		})
	}

	return models.UserSearchResponse{
		PageIndex:    pageIndex,
		TotalResults: len(users),
		Results:      paginate(users, pageIndex, s.pageSize),
	}
}

func (s *searchService) SearchDashboards(ctx context.Context, queryTerm string, pageIndex int) models.DashboardSearchResponse {
	empty := models.DashboardSearchResponse{PageIndex: pageIndex, Results: []models.DashboardSummary{}}
	if sqlutil.GuardArguments(map[string]string{"query": queryTerm}) != nil {
		s.logger.Warn("dashboard search rejected", zap.String("query", queryTerm))
		return empty
	}

	query := "select * from dashboards limit 100;"
	if !isWildcard(queryTerm) {
		escaped := sqlutil.Escape(queryTerm)
		query = fmt.Sprintf(
			"select * from dashboards where name like '%%%s%%' or description like '%%%s%%' or group_name like '%%%s%%' limit 100;",
			escaped, escaped, escaped)
	}
	records, err := s.executor.Execute(ctx, query)
	if err != nil {
		return empty
	}

	dashboards := make([]models.DashboardSummary, 0, len(records))
	for _, rec := range records {
		dashboards = append(dashboards, models.DashboardSummary{
			URI:         rec.String("dashboard_id"),
			Cluster:     "default",
			GroupName:   rec.String("group_name"),
			Product:     rec.String("product"),
			Name:        rec.String("name"),
			URL:         rec.String("url"),
			Description: rec.String("description"),
		})
	}

	return models.DashboardSearchResponse{
		PageIndex:    pageIndex,
		TotalResults: len(dashboards),
		Results:      paginate(dashboards, pageIndex, s.pageSize),
	}
}

// Suggest fuzzy-matches the prefix against unique dataset names for
// type-ahead completion.
func (s *searchService) Suggest(ctx context.Context, prefix string) []string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}
	}

	datasets := DeduplicateDatasets(s.discovery.DiscoverDatasets(ctx))
	names := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		names = append(names, ds.Name)
	}

	matches := fuzzy.Find(prefix, names)
	suggestions := make([]string, 0, s.suggestLimit)
	for _, match := range matches {
		suggestions = append(suggestions, match.Str)
		if len(suggestions) == s.suggestLimit {
			break
		}
	}
	return suggestions
}

// isWildcard reports a list-everything query.
func isWildcard(queryTerm string) bool {
	trimmed := strings.TrimSpace(queryTerm)
	return trimmed == "" || trimmed == "*"
}

// paginate slices one page out of results, clamping past-the-end pages to
// empty rather than erroring.
func paginate[T any](results []T, pageIndex, pageSize int) []T {
	if pageIndex < 0 || pageSize <= 0 {
		return []T{}
	}
	start := pageIndex * pageSize
	if start >= len(results) {
		return []T{}
	}
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}

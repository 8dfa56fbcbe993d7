package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/optimusdb"
	"github.com/georgeGeorgakakos/optimusddc/pkg/sqlutil"
)

// DashboardService reads dashboard rows kept in the backend's dashboards
// table. Dashboard coverage is thin compared to tables; only lookup and
// description editing are supported.
type DashboardService interface {
	GetDashboard(ctx context.Context, id string) (models.Dashboard, bool)
	GetDashboardDescription(ctx context.Context, id string) string
	PutDashboardDescription(ctx context.Context, id, description string) error
	DashboardsByUserRelation(ctx context.Context, userEmail, relation string) []models.DashboardSummary
	DashboardsUsingTable(ctx context.Context, tableKey string) []models.DashboardSummary
}

type dashboardService struct {
	executor CommandExecutor
	logger   *zap.Logger
}

func NewDashboardService(executor CommandExecutor, logger *zap.Logger) DashboardService {
	return &dashboardService{executor: executor, logger: logger}
}

func (s *dashboardService) GetDashboard(ctx context.Context, id string) (models.Dashboard, bool) {
	if sqlutil.GuardArguments(map[string]string{"dashboard_id": id}) != nil {
		return models.Dashboard{}, false
	}

	records, err := s.executor.Execute(ctx,
		fmt.Sprintf("select * from dashboards where dashboard_id='%s';", sqlutil.Escape(id)))
	if err != nil || len(records) == 0 {
		return models.Dashboard{}, false
	}

	rec := records[0]
	now := time.Now().Unix()
	dash := models.Dashboard{
		URI:              rec.String("dashboard_id"),
		Cluster:          "default",
		GroupName:        rec.String("group_name"),
		GroupURL:         rec.String("group_url"),
		Product:          rec.String("product"),
		Name:             rec.String("name"),
		URL:              rec.String("url"),
		Description:      rec.String("description"),
		CreatedTimestamp: now,
		UpdatedTimestamp: now,
	}
	if dash.URI == "" {
		dash.URI = id
	}
	if created, ok := rec.Int("created_timestamp"); ok {
		dash.CreatedTimestamp = created
	}
	if updated, ok := rec.Int("updated_timestamp"); ok {
		dash.UpdatedTimestamp = updated
	}
	if lastRun, ok := rec.Int("last_run"); ok {
		dash.LastSuccessfulRunTimestamp = lastRun
	}
	return dash, true
}

func (s *dashboardService) GetDashboardDescription(ctx context.Context, id string) string {
	if sqlutil.GuardArguments(map[string]string{"dashboard_id": id}) != nil {
		return ""
	}
	records, err := s.executor.Execute(ctx,
		fmt.Sprintf("select description from dashboards where dashboard_id='%s';", sqlutil.Escape(id)))
	if err != nil || len(records) == 0 {
		return ""
	}
	return records[0].String("description")
}

func (s *dashboardService) PutDashboardDescription(ctx context.Context, id, description string) error {
	if err := sqlutil.GuardArguments(map[string]string{"dashboard_id": id}); err != nil {
		return err
	}
	query := fmt.Sprintf("update dashboards set description='%s' where dashboard_id='%s';",
		sqlutil.Escape(description), sqlutil.Escape(id))
	if _, err := s.executor.Execute(ctx, query); err != nil {
		return err
	}
	s.logger.Info("dashboard description updated", zap.String("dashboard_id", id))
	return nil
}

// DashboardsByUserRelation lists dashboards a user follows, owns, or reads.
func (s *dashboardService) DashboardsByUserRelation(ctx context.Context, userEmail, relation string) []models.DashboardSummary {
	if models.ValidateRelation(relation) != nil {
		return []models.DashboardSummary{}
	}
	if sqlutil.GuardArguments(map[string]string{"user_id": userEmail}) != nil {
		return []models.DashboardSummary{}
	}

	query := fmt.Sprintf(
		"select d.dashboard_id, d.name, d.group_name, d.product, d.url, d.description from dashboards d join user_resource_relations r on d.dashboard_id = r.resource_id where r.user_id='%s' and r.relation_type='%s' and r.resource_type='dashboard';",
		sqlutil.Escape(userEmail), relation)
	records, err := s.executor.Execute(ctx, query)
	if err != nil {
		return []models.DashboardSummary{}
	}
	return summariesFromRecords(records)
}

// DashboardsUsingTable lists dashboards whose source tables include the
// given table key. The dashboards table keeps sources as a comma list in a
// "tables" field.
func (s *dashboardService) DashboardsUsingTable(ctx context.Context, tableKey string) []models.DashboardSummary {
	if sqlutil.GuardArguments(map[string]string{"table_key": tableKey}) != nil {
		return []models.DashboardSummary{}
	}

	query := fmt.Sprintf("select * from dashboards where tables like '%%%s%%';", sqlutil.Escape(tableKey))
	records, err := s.executor.Execute(ctx, query)
	if err != nil {
		return []models.DashboardSummary{}
	}
	return summariesFromRecords(records)
}

func summariesFromRecords(records optimusdb.RecordSet) []models.DashboardSummary {
	summaries := make([]models.DashboardSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, models.DashboardSummary{
			URI:         rec.String("dashboard_id"),
			Cluster:     "default",
			GroupName:   rec.String("group_name"),
			Product:     rec.String("product"),
			Name:        rec.String("name"),
			URL:         rec.String("url"),
			Description: rec.String("description"),
		})
	}
	return summaries
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/apperrors"
	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
)

// fakeCatalog records mutation calls and serves canned reads.
type fakeCatalog struct {
	table     models.Table
	tableErr  error
	mutations []string
	mutateErr error
	lineage   models.Lineage
	tags      []models.TagUsage
	popular   []models.DiscoveredDataset
	stats     models.CatalogStatistics
}

func (f *fakeCatalog) GetTable(ctx context.Context, key string) (models.Table, error) {
	return f.table, f.tableErr
}

func (f *fakeCatalog) GetTableDescription(ctx context.Context, key string) (string, error) {
	return f.table.Description, f.tableErr
}

func (f *fakeCatalog) PutTableDescription(ctx context.Context, key, description string) error {
	f.mutations = append(f.mutations, "description:"+key+":"+description)
	return f.mutateErr
}

func (f *fakeCatalog) GetColumnDescription(ctx context.Context, key, columnName string) (string, error) {
	return "col desc", f.tableErr
}

func (f *fakeCatalog) PutColumnDescription(ctx context.Context, key, columnName, description string) error {
	f.mutations = append(f.mutations, "column:"+columnName+":"+description)
	return f.mutateErr
}

func (f *fakeCatalog) GetTags(ctx context.Context) []models.TagUsage { return f.tags }

func (f *fakeCatalog) AddTag(ctx context.Context, key, tag string) error {
	f.mutations = append(f.mutations, "add_tag:"+tag)
	return f.mutateErr
}

func (f *fakeCatalog) DeleteTag(ctx context.Context, key, tag string) error {
	f.mutations = append(f.mutations, "delete_tag:"+tag)
	return f.mutateErr
}

func (f *fakeCatalog) GetBadges(ctx context.Context) []models.Badge { return nil }

func (f *fakeCatalog) AddBadge(ctx context.Context, key, badgeName string) error {
	f.mutations = append(f.mutations, "add_badge:"+badgeName)
	return f.mutateErr
}

func (f *fakeCatalog) DeleteBadge(ctx context.Context, key, badgeName string) error {
	f.mutations = append(f.mutations, "delete_badge:"+badgeName)
	return f.mutateErr
}

func (f *fakeCatalog) AddOwner(ctx context.Context, key, owner string) error {
	f.mutations = append(f.mutations, "add_owner:"+owner)
	return f.mutateErr
}

func (f *fakeCatalog) DeleteOwner(ctx context.Context, key, owner string) error {
	f.mutations = append(f.mutations, "delete_owner:"+owner)
	return f.mutateErr
}

func (f *fakeCatalog) GetLineage(ctx context.Context, key, direction string, depth int) models.Lineage {
	lineage := f.lineage
	lineage.Key = key
	lineage.Direction = direction
	lineage.Depth = depth
	return lineage
}

func (f *fakeCatalog) SetLineage(ctx context.Context, key string, upstream, downstream []string) error {
	f.mutations = append(f.mutations, "lineage:"+strings.Join(upstream, ",")+"|"+strings.Join(downstream, ","))
	return f.mutateErr
}

func (f *fakeCatalog) GetStatistics(ctx context.Context, key string) []models.ColumnStat {
	return []models.ColumnStat{{StatType: "row_count", StatVal: "42"}}
}

func (f *fakeCatalog) GetCatalogStatistics(ctx context.Context) models.CatalogStatistics {
	return f.stats
}

func (f *fakeCatalog) GetGenerationCode(ctx context.Context, key string) string {
	return "-- no generation code"
}

func (f *fakeCatalog) PopularTables(ctx context.Context, limit int) []models.DiscoveredDataset {
	if limit < len(f.popular) {
		return f.popular[:limit]
	}
	return f.popular
}

func (f *fakeCatalog) LatestUpdatedTimestamp() int64 { return 1700000000 }

func newTablesServer(catalog *fakeCatalog) *http.ServeMux {
	mux := http.NewServeMux()
	NewTablesHandler(catalog, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestTablesHandler_GetTable(t *testing.T) {
	catalog := &fakeCatalog{table: models.Table{
		Database: "db",
		Schema:   "sales",
		Name:     "orders",
		Key:      "db://default.sales/orders",
	}}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metadata/v0/table?key=db://default.sales/orders", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var table models.Table
	require.NoError(t, json.NewDecoder(w.Body).Decode(&table))
	assert.Equal(t, "orders", table.Name)
	assert.Equal(t, "db://default.sales/orders", table.Key)
}

func TestTablesHandler_GetTable_MissingKey(t *testing.T) {
	mux := newTablesServer(&fakeCatalog{})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metadata/v0/table", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "missing_key", body["error"])
}

func TestTablesHandler_GetTable_UnsafeKey(t *testing.T) {
	catalog := &fakeCatalog{tableErr: apperrors.ErrUnsafeArgument}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metadata/v0/table?key=db://default.x/a%27+OR+%271%27%3D%271", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "unsafe_argument", body["error"])
}

func TestTablesHandler_GetTable_BackendDown(t *testing.T) {
	catalog := &fakeCatalog{tableErr: apperrors.ErrUnavailable}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metadata/v0/table?key=db://default.sales/orders", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTablesHandler_PutDescription(t *testing.T) {
	catalog := &fakeCatalog{}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/metadata/v0/table/description?key=db://default.sales/orders",
		strings.NewReader(`{"description":"orders fact table"}`))
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, catalog.mutations, 1)
	assert.Equal(t, "description:db://default.sales/orders:orders fact table", catalog.mutations[0])
}

func TestTablesHandler_PutColumnDescription_MissingColumn(t *testing.T) {
	catalog := &fakeCatalog{}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/metadata/v0/table/column/description?key=db://default.sales/orders",
		strings.NewReader(`{"description":"pk"}`))
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, catalog.mutations)
}

func TestTablesHandler_AddTag(t *testing.T) {
	catalog := &fakeCatalog{}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/metadata/v0/table/tag?key=db://default.sales/orders&tag=pii", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"add_tag:pii"}, catalog.mutations)
}

func TestTablesHandler_AddTag_MissingValue(t *testing.T) {
	catalog := &fakeCatalog{}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/metadata/v0/table/tag?key=db://default.sales/orders", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "missing_tag", body["error"])
	assert.Empty(t, catalog.mutations)
}

func TestTablesHandler_DeleteOwner(t *testing.T) {
	catalog := &fakeCatalog{}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/metadata/v0/table/owner?key=db://default.sales/orders&owner=bob", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"delete_owner:bob"}, catalog.mutations)
}

func TestTablesHandler_GetLineage_Defaults(t *testing.T) {
	mux := newTablesServer(&fakeCatalog{})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metadata/v0/table/lineage?key=db://default.sales/orders", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var lineage models.Lineage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&lineage))
	assert.Equal(t, models.LineageDirectionBoth, lineage.Direction)
	assert.Equal(t, 1, lineage.Depth)
}

func TestTablesHandler_PutLineage(t *testing.T) {
	catalog := &fakeCatalog{}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/metadata/v0/table/lineage?key=db://default.sales/orders",
		strings.NewReader(`{"upstream":["db://default.raw/events"],"downstream":[]}`))
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"lineage:db://default.raw/events|"}, catalog.mutations)
}

func TestTablesHandler_PopularTables_InvalidLimit(t *testing.T) {
	mux := newTablesServer(&fakeCatalog{})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metadata/v0/popular_tables?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTablesHandler_GetCatalogStatistics(t *testing.T) {
	catalog := &fakeCatalog{stats: models.CatalogStatistics{
		TotalDatasets: 25,
		TotalSchemas:  4,
		TotalColumns:  250,
	}}
	mux := newTablesServer(catalog)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metadata/v0/catalog/statistics", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var stats models.CatalogStatistics
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 25, stats.TotalDatasets)
	assert.Equal(t, 250, stats.TotalColumns)
}

func TestTablesHandler_LatestUpdatedTimestamp(t *testing.T) {
	mux := newTablesServer(&fakeCatalog{})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metadata/v0/latest_updated_ts", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]int64
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, int64(1700000000), body["timestamp"])
}

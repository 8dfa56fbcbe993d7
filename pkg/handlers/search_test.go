package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
)

type fakeSearchService struct {
	lastQuery string
	lastPage  int
	tables    models.TableSearchResponse
}

func (f *fakeSearchService) SearchTables(ctx context.Context, queryTerm string, pageIndex int) models.TableSearchResponse {
	f.lastQuery, f.lastPage = queryTerm, pageIndex
	return f.tables
}

func (f *fakeSearchService) SearchUsers(ctx context.Context, queryTerm string, pageIndex int) models.UserSearchResponse {
	f.lastQuery, f.lastPage = queryTerm, pageIndex
	return models.UserSearchResponse{PageIndex: pageIndex}
}

func (f *fakeSearchService) SearchDashboards(ctx context.Context, queryTerm string, pageIndex int) models.DashboardSearchResponse {
	f.lastQuery, f.lastPage = queryTerm, pageIndex
	return models.DashboardSearchResponse{PageIndex: pageIndex}
}

func (f *fakeSearchService) Search(ctx context.Context, req models.SearchRequest) models.UnifiedSearchResponse {
	f.lastQuery, f.lastPage = req.QueryTerm, req.PageIndex
	response := models.UnifiedSearchResponse{PageIndex: req.PageIndex}
	if req.Resource == models.ResourceTable || req.Resource == "" || req.Resource == models.ResourceAll {
		tables := f.tables
		response.Tables = &tables
	}
	if req.Resource == models.ResourceUser || req.Resource == "" || req.Resource == models.ResourceAll {
		users := models.UserSearchResponse{PageIndex: req.PageIndex}
		response.Users = &users
	}
	return response
}

func (f *fakeSearchService) Suggest(ctx context.Context, prefix string) []string {
	f.lastQuery = prefix
	return []string{"sales.orders", "sales.order_items"}
}

func newSearchServer(search *fakeSearchService) *http.ServeMux {
	mux := http.NewServeMux()
	NewSearchHandler(search, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestSearchHandler_SearchTables(t *testing.T) {
	search := &fakeSearchService{tables: models.TableSearchResponse{
		PageIndex:    2,
		TotalResults: 21,
		Results: []models.TableSearchResult{
			{Name: "orders", Key: "db://default.sales/orders"},
		},
	}}
	mux := newSearchServer(search)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search/v0/table?query_term=orders&page_index=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "orders", search.lastQuery)
	assert.Equal(t, 2, search.lastPage)

	var response models.TableSearchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 21, response.TotalResults)
	require.Len(t, response.Results, 1)
	assert.Equal(t, "orders", response.Results[0].Name)
}

func TestSearchHandler_UnifiedSearch(t *testing.T) {
	search := &fakeSearchService{tables: models.TableSearchResponse{TotalResults: 1}}
	mux := newSearchServer(search)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search/v0?resource=all&query_term=orders", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "orders", search.lastQuery)

	var response models.UnifiedSearchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.NotNil(t, response.Tables)
	assert.Equal(t, 1, response.Tables.TotalResults)
	assert.NotNil(t, response.Users)
}

func TestSearchHandler_UnifiedSearch_InvalidResource(t *testing.T) {
	mux := newSearchServer(&fakeSearchService{})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search/v0?resource=pipeline&query_term=orders", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_SearchTables_InvalidPage(t *testing.T) {
	mux := newSearchServer(&fakeSearchService{})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search/v0/table?query_term=orders&page_index=-2", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_SearchUsers(t *testing.T) {
	search := &fakeSearchService{}
	mux := newSearchServer(search)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search/v0/user?query_term=jane", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane", search.lastQuery)
	assert.Equal(t, 0, search.lastPage)
}

func TestSearchHandler_SearchDashboards(t *testing.T) {
	search := &fakeSearchService{}
	mux := newSearchServer(search)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search/v0/dashboard?query_term=revenue&page_index=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "revenue", search.lastQuery)
	assert.Equal(t, 1, search.lastPage)
}

func TestSearchHandler_Suggest(t *testing.T) {
	search := &fakeSearchService{}
	mux := newSearchServer(search)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search/v0/suggest?prefix=ord", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, []string{"sales.orders", "sales.order_items"}, body["suggestions"])
}

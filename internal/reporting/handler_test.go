package reporting

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/redprice-lab/redprice-analytics/internal/core/storage/memory"
)

func newTestRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc.RegisterRoutes(router)
	return router
}

func TestService_Handlers_StatusMapping(t *testing.T) {
	store := memory.New()
	seedOrders(t, store)
	svc := newTestService(t, store, nil)
	router := newTestRouter(t, svc)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{
			name:           "summary ok",
			path:           "/v1/reports/summary",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "abc by dimension ok",
			path:           "/v1/reports/abc/category",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "abc by profile ok",
			path:           "/v1/reports/abc/abc_supplier",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "abc unknown report returns 400",
			path:           "/v1/reports/abc/abc_warehouse",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "abc bad value field returns 400",
			path:           "/v1/reports/abc/category?value_field=margin",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "top products ok",
			path:           "/v1/reports/top-products?limit=1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "top products bad limit returns 400",
			path:           "/v1/reports/top-products?limit=zero",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "top products negative limit returns 400",
			path:           "/v1/reports/top-products?limit=-3",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "profitability ok",
			path:           "/v1/reports/profitability?product=Widget&supplier_id=sup-1&price=100",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "profitability missing product returns 400",
			path:           "/v1/reports/profitability?price=100",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "profitability bad price returns 400",
			path:           "/v1/reports/profitability?product=Widget&price=expensive",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, tc.expectedStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestService_HandleABCReport_Payload(t *testing.T) {
	store := memory.New()
	seedOrders(t, store)
	svc := newTestService(t, store, nil)
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/abc/category", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ABCReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "abc_category", resp.Profile)
	require.Len(t, resp.Buckets, 2)
	require.Equal(t, "Tools", resp.Buckets[0].Key)
	require.Equal(t, "A", resp.Buckets[0].Class)
}

func TestService_HandleSummary_StoreFailure(t *testing.T) {
	svc := newTestService(t, memory.New(), nil)
	svc.store = &failingStore{}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

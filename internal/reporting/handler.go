package reporting

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/redprice-lab/redprice-analytics/internal/core/analytics"
	httperr "github.com/redprice-lab/redprice-analytics/internal/core/errors"
)

// RegisterRoutes registers all report API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/reports/summary", s.HandleSummary)
	r.GET("/v1/reports/abc/:report", s.HandleABCReport)
	r.GET("/v1/reports/top-products", s.HandleTopProducts)
	r.GET("/v1/reports/profitability", s.HandleProfitability)
}

// HandleSummary handles GET /v1/reports/summary
func (s *Service) HandleSummary(c *gin.Context) {
	resp, err := s.Summary(c.Request.Context())
	if err != nil {
		writeReportError(c, err, "Failed to build summary report")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleABCReport handles GET /v1/reports/abc/:report
// Query parameters: value_field
func (s *Service) HandleABCReport(c *gin.Context) {
	var uri struct {
		Report string `uri:"report" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	req := ABCQueryRequest{
		Report:     uri.Report,
		ValueField: c.Query("value_field"),
	}

	resp, err := s.ABCReport(c.Request.Context(), req)
	if err != nil {
		writeReportError(c, err, "Failed to build classification report")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleTopProducts handles GET /v1/reports/top-products
// Query parameters: limit
func (s *Service) HandleTopProducts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "Invalid limit parameter",
				Details:   "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	resp, err := s.TopProducts(c.Request.Context(), limit)
	if err != nil {
		writeReportError(c, err, "Failed to build top products report")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleProfitability handles GET /v1/reports/profitability
// Query parameters: product, supplier_id, price
func (s *Service) HandleProfitability(c *gin.Context) {
	product := analytics.ProductRef{
		Name:       c.Query("product"),
		SupplierID: c.Query("supplier_id"),
	}

	if raw := c.Query("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "Invalid price parameter",
				Details:   err.Error(),
			})
			return
		}
		product.Price = price
	}

	resp, err := s.Profitability(c.Request.Context(), product)
	if err != nil {
		writeReportError(c, err, "Failed to build profitability report")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func writeReportError(c *gin.Context, err error, message string) {
	if errors.Is(err, ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid report query",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   message,
		Details:   err.Error(),
	})
}

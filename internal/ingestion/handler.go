package ingestion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
	httperr "github.com/redprice-lab/redprice-analytics/internal/core/errors"
	"github.com/redprice-lab/redprice-analytics/internal/core/storage"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgPersistFailed  = "Failed to persist order"
	msgDuplicateOrder = "Order already exists"

	defaultListLimit = 100
	maxListLimit     = 1000
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestHandler handles HTTP POST requests for order ingestion.
func (s *Service) IngestHandler(c *gin.Context) {
	order, payloadSize, err := s.parseOrder(c)
	if err != nil {
		writeError(c, err)
		return
	}

	slog.Info("Received Order",
		"order_id", order.ID,
		"supplier_id", order.SupplierID,
		"line_items", len(order.Items),
		"payload_size", payloadSize)

	if err := s.persistOrder(c.Request.Context(), order); err != nil {
		writeError(c, err)
		return
	}

	// Reports recompute from history on demand, so accepting the order is
	// all ingestion has to do.
	c.JSON(http.StatusAccepted, gin.H{
		"status":     "accepted",
		"order_id":   order.ID,
		"ingest_seq": order.IngestSeq,
	})
}

// ListOrdersHandler handles GET /v1/orders
// Query parameters: cursor, limit
func (s *Service) ListOrdersHandler(c *gin.Context) {
	cursor, limit, err := parseListQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	orders, storeErr := s.store.ListOrdersAfterCursor(c.Request.Context(), cursor, limit)
	if storeErr != nil {
		slog.Error("Failed to list orders", "error", storeErr, "cursor", cursor)
		writeError(c, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    "Failed to list orders",
		})
		return
	}

	nextCursor := cursor
	if len(orders) > 0 {
		nextCursor = orders[len(orders)-1].IngestSeq
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"count":       len(orders),
		"next_cursor": nextCursor,
	})
}

// parseOrder reads the raw request body, binds it into the loose wire shape
// and normalizes it into a canonical order. Returns the order and the raw
// payload size (used for structured logging upstream).
func (s *Service) parseOrder(c *gin.Context) (*v1.Order, int, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	// Check if body exceeds maximum size
	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var raw v1.RawOrder
	if err := c.ShouldBindJSON(&raw); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	order := raw.Normalize(s.nowFn())
	if order.ID == "" {
		order.ID = s.idFn()
	}

	if err := order.Validate(); err != nil {
		slog.Warn("Order validation failed", "error", err, "order_id", order.ID)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    err.Error(),
		}
	}

	return &order, len(bodyBytes), nil
}

// persistOrder saves the order to the backing store.
func (s *Service) persistOrder(ctx context.Context, order *v1.Order) *ingestionError {
	if err := s.store.SaveOrder(ctx, order); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Info("Duplicate order rejected", "order_id", order.ID, "supplier_id", order.SupplierID)
			return &ingestionError{
				statusCode: http.StatusConflict,
				errorType:  httperr.HttpDuplicateOrderError,
				message:    msgDuplicateOrder,
			}
		}

		slog.Error("Failed to persist order", "error", err, "order_id", order.ID)
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		}
	}

	return nil
}

func parseListQuery(c *gin.Context) (int64, int, *ingestionError) {
	cursor := int64(0)
	if raw := c.Query("cursor"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return 0, 0, &ingestionError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidQueryError,
				message:    "cursor must be a non-negative integer",
			}
		}
		cursor = parsed
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, 0, &ingestionError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidQueryError,
				message:    "limit must be a positive integer",
			}
		}
		if parsed > maxListLimit {
			parsed = maxListLimit
		}
		limit = parsed
	}

	return cursor, limit, nil
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}

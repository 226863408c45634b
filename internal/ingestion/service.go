package ingestion

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/redprice-lab/redprice-analytics/internal/core/storage"
)

type Service struct {
	store            storage.OrderStore
	maxBodySizeBytes int
	nowFn            func() time.Time
	idFn             func() string
}

func NewService(repo storage.OrderStore, maxBodySizeMB int) *Service {
	if repo == nil {
		panic("ingestion: store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            repo,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
		idFn: func() string {
			return "ord_" + uuid.NewString()
		},
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/orders", s.IngestHandler)
	r.GET("/v1/orders", s.ListOrdersHandler)
}

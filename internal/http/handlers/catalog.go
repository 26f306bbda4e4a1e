package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cinematch-backend/internal/engine"
	"github.com/yungbote/cinematch-backend/internal/http/response"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

type CatalogHandler struct {
	log *logger.Logger
	svc *engine.Service
}

func NewCatalogHandler(log *logger.Logger, svc *engine.Service) *CatalogHandler {
	return &CatalogHandler{
		log: log.With("handler", "CatalogHandler"),
		svc: svc,
	}
}

// GET /api/v1/catalog
func (h *CatalogHandler) List(c *gin.Context) {
	cat := h.svc.Catalog()
	response.RespondOK(c, gin.H{
		"entries": cat.Entries(),
		"total":   cat.Len(),
	})
}

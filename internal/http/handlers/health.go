package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cinematch-backend/internal/http/response"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// GET /api/v1/health
func (h *HealthHandler) Health(c *gin.Context) {
	response.RespondOK(c, gin.H{"status": "ok"})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cinematch-backend/internal/catalog"
	"github.com/yungbote/cinematch-backend/internal/embedding"
	"github.com/yungbote/cinematch-backend/internal/engine"
	"github.com/yungbote/cinematch-backend/internal/http/response"
	"github.com/yungbote/cinematch-backend/internal/platform/apierr"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
	"github.com/yungbote/cinematch-backend/internal/scoring"
)

type AnalysisHandler struct {
	log *logger.Logger
	svc *engine.Service
}

func NewAnalysisHandler(log *logger.Logger, svc *engine.Service) *AnalysisHandler {
	return &AnalysisHandler{
		log: log.With("handler", "AnalysisHandler"),
		svc: svc,
	}
}

type analyzeRequest struct {
	SessionID    string             `json:"session_id"`
	Query        string             `json:"query" binding:"required"`
	GenreWeights map[string]float64 `json:"genre_weights"`
	MoodWeights  map[string]float64 `json:"mood_weights"`
	TopN         int                `json:"top_n"`
}

type analyzeResponse struct {
	SessionID string `json:"session_id"`
	*engine.Result
}

// POST /api/v1/analysis
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	sessionID := uuid.Nil
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
			return
		}
		sessionID = parsed
	}
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	result, err := h.svc.Analyze(c.Request.Context(), engine.AnalyzeInput{
		SessionID:    sessionID,
		QueryText:    req.Query,
		GenreWeights: scoring.WeightMap(req.GenreWeights),
		MoodWeights:  scoring.WeightMap(req.MoodWeights),
		TopN:         req.TopN,
	})
	if err != nil {
		h.log.Error("Analyze failed", "error", err, "session_id", sessionID.String())
		respondAnalysisError(c, err)
		return
	}

	response.RespondOK(c, analyzeResponse{SessionID: sessionID.String(), Result: result})
}

// DELETE /api/v1/sessions/:id
func (h *AnalysisHandler) EndSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	h.svc.EndSession(id)
	response.RespondOK(c, gin.H{"ended": id.String()})
}

func respondAnalysisError(c *gin.Context, err error) {
	response.RespondAppError(c, classifyAnalysisError(err))
}

func classifyAnalysisError(err error) *apierr.Error {
	var validationErr *scoring.ValidationError
	if errors.As(err, &validationErr) {
		return apierr.New(http.StatusBadRequest, string(validationErr.Code), err)
	}
	var dataErr *catalog.DataError
	if errors.As(err, &dataErr) {
		return apierr.New(http.StatusBadRequest, string(dataErr.Code), err)
	}
	var providerErr *embedding.ProviderError
	if errors.As(err, &providerErr) {
		return apierr.New(http.StatusBadGateway, "embedding_provider_failed", err)
	}
	return apierr.New(http.StatusInternalServerError, "analysis_failed", err)
}

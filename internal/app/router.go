package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cinematch-backend/internal/engine"
	"github.com/yungbote/cinematch-backend/internal/http/handlers"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, svc *engine.Service) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	analysisHandler := handlers.NewAnalysisHandler(log, svc)
	catalogHandler := handlers.NewCatalogHandler(log, svc)
	healthHandler := handlers.NewHealthHandler()

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)
		v1.GET("/catalog", catalogHandler.List)
		v1.POST("/analysis", analysisHandler.Analyze)
		v1.DELETE("/sessions/:id", analysisHandler.EndSession)
	}

	return router
}

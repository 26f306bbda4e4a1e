package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cinematch-backend/internal/engine"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

type App struct {
	Log    *logger.Logger
	Cfg    Config
	Engine *engine.Service
	Router *gin.Engine
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	provider, err := wireProvider(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	svc, err := wireEngine(ctx, log, cfg, provider)
	if err != nil {
		log.Sync()
		return nil, err
	}

	router := wireRouter(log, svc)

	return &App{
		Log:    log,
		Cfg:    cfg,
		Engine: svc,
		Router: router,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

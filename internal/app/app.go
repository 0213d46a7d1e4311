package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/claimintake-backend/internal/clients/gcs"
	"github.com/yungbote/claimintake-backend/internal/mail"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
	"github.com/yungbote/claimintake-backend/internal/records"
	"github.com/yungbote/claimintake-backend/internal/services"
)

type App struct {
	Log    *logger.Logger
	Router *gin.Engine
	Cfg    Config
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
	cfg, err := LoadConfig()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := records.NewAirtable(log, cfg.Airtable)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init record store: %w", err)
	}

	uploader, err := gcs.New(ctx, log, cfg.Storage)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init storage uploader: %w", err)
	}

	// Transport order is the fallback order: the HTTP email API first,
	// direct SMTP submission second.
	notifier := mail.NewChain(log,
		mail.NewSendGrid(log, cfg.SendGrid),
		mail.NewSMTP(log, cfg.SMTP),
	)

	classifier := services.NewClassificationResolver(log, store, cfg.Tables)
	reconciler := services.NewReconciler(log, store, cfg.Tables)
	recipients := services.NewRecipientResolver(log, store, cfg.Tables, cfg.NotifyOverride)
	submissions := services.NewSubmissionService(log, uploader, classifier, reconciler, recipients, notifier)

	router := wireRouter(log, cfg, submissions)

	return &App{
		Log:    log,
		Router: router,
		Cfg:    cfg,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/claimintake-backend/internal/http/handlers"
	"github.com/yungbote/claimintake-backend/internal/http/middleware"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
	"github.com/yungbote/claimintake-backend/internal/services"
)

func wireRouter(log *logger.Logger, cfg Config, submissions *services.SubmissionService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.AllowOrigins))
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(log))

	healthHandler := handlers.NewHealthHandler()
	claimHandler := handlers.NewClaimHandler(log, submissions)

	router.GET("/healthcheck", healthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/claims", claimHandler.Submit)
	}

	return router
}

package app

import (
	"github.com/gin-gonic/gin"

	"github.com/securityexcellence/lwsync/pkg/logger"
	"github.com/securityexcellence/lwsync/pkg/metrics"
)

func NewGinEngine(l *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		metrics.GinMiddleware(),
		logger.CorrelationMiddleware(),
		l.GinBodyLogger(),
		gin.Recovery(),
	)
	return engine
}

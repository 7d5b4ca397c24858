package handlers

import (
	portssvc "github.com/OpenGescom/compta_ledger/internal/core/ports/services"
	"github.com/OpenGescom/compta_ledger/internal/middleware"
	"github.com/OpenGescom/compta_ledger/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	limiterInstance *limiter.Limiter,
) {
	r.GET("/", home)

	// Development token endpoint, rate limited like everything else
	registerAuthRoutes(r, cfg)

	setupAPIV1Routes(r, cfg, services, limiterInstance)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the entity
// route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	limiterInstance *limiter.Limiter,
) {
	v1 := r.Group("/api/v1",
		middleware.RateLimit(limiterInstance),
		middleware.AuthMiddleware(cfg.JWTSecret),
	)

	registerAccountRoutes(v1, services.Chart)
	registerJournalRoutes(v1, services.Journal)
	registerExerciseRoutes(v1, services.Exercise, services.Entry)
	registerEntryRoutes(v1, services.Entry)
	registerIntegrityRoutes(v1, services.Integrity)
	registerAuditRoutes(v1, services.Audit)
}

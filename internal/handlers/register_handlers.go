package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/corebank/bancore/internal/core/domain"
	"github.com/corebank/bancore/internal/core/services"
	"github.com/corebank/bancore/internal/middleware"
	"github.com/corebank/bancore/pkg/config"
)

// Services bundles the service dependencies the HTTP layer needs.
type Services struct {
	Account   *services.AccountService
	Ledger    *services.LedgerService
	Reporting *services.ReportingService
}

// RegisterRoutes sets up all application routes and route-level middleware.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, svcs Services) error {
	registerCustomValidators()

	r.Use(cors.Default())

	// Health check stays outside the authenticated group.
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return err
	}
	rateLimiter := limiter.New(memory.NewStore(), rate)

	groupMiddleware := []gin.HandlerFunc{middleware.RateLimit(rateLimiter)}
	if cfg.JWTSecret != "" {
		groupMiddleware = append(groupMiddleware, middleware.AuthMiddleware(cfg.JWTSecret))
	}
	v1 := r.Group("/api/v1", groupMiddleware...)

	registerAccountRoutes(v1, svcs.Account)
	registerTransactionRoutes(v1, svcs.Ledger, svcs.Account)
	registerPaymentRoutes(v1, svcs.Ledger, svcs.Account)
	registerDashboardRoutes(v1, svcs.Reporting)

	return nil
}

// registerCustomValidators wires domain enums into gin's binding validator.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("accountkind", func(fl validator.FieldLevel) bool {
		return domain.ValidAccountKind(domain.AccountKind(fl.Field().String()))
	})
}

// Package app assembles services, handlers and middleware into the HTTP router.
package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"urwallet/internal/ai"
	"urwallet/internal/auth"
	"urwallet/internal/currency"
	_ "urwallet/internal/docs" // registers the swagger spec
	"urwallet/internal/handlers"
	"urwallet/internal/middleware"
	"urwallet/internal/services"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	DB              *gorm.DB
	Verifier        auth.Verifier
	Generator       ai.Generator
	Rates           currency.RateProvider
	AITimeout       time.Duration
	FXTimeout       time.Duration
	AIRatePerMinute int
	CORSOrigins     []string
}

// NewRouter wires services and handlers into a gin engine.
func NewRouter(deps Deps) *gin.Engine {
	db := deps.DB
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	transactionService := services.NewTransactionService(db, deps.Generator, deps.AITimeout)
	dashboardService := services.NewDashboardService(db)
	insightService := services.NewInsightService(db, deps.Generator, deps.AITimeout)
	currencyService := services.NewCurrencyService(deps.Rates, deps.FXTimeout)

	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	aiHandler := handlers.NewAIHandler(insightService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(deps.CORSOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	fx := api.Group("/currency")
	fx.GET("/rates/:currency", currencyHandler.GetRates)
	fx.GET("/convert", currencyHandler.Convert)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Verifier, userService))

	protected.GET("/auth/me", authHandler.Me)

	user := protected.Group("/user")
	user.PUT("/settings", userHandler.UpdateSettings)
	user.GET("/savings/reconcile", userHandler.ReconcileSavings)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	protected.GET("/dashboard/summary", dashboardHandler.GetSummary)

	aiGroup := protected.Group("/ai")
	aiGroup.Use(middleware.NewUserRateLimiter(deps.AIRatePerMinute).Middleware())
	aiGroup.GET("/insights", aiHandler.GetInsights)
	aiGroup.POST("/categorize", aiHandler.Categorize)
	aiGroup.GET("/spike-detection", aiHandler.DetectSpike)

	return router
}

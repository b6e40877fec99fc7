package router

import (
	"fmt"
	"time"

	"github.com/thridhath-dev/brand---new-finance/internal/config"
	"github.com/thridhath-dev/brand---new-finance/internal/handler"
	"github.com/thridhath-dev/brand---new-finance/internal/identity"
	"github.com/thridhath-dev/brand---new-finance/internal/middleware"
	"github.com/thridhath-dev/brand---new-finance/internal/webhook"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and wires all handlers.
func SetupRouter(cfg *config.Config, db *gorm.DB) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), gin.Logger(), gin.Recovery())

	users := identity.NewService(db)

	verifier, err := webhook.NewVerifier(cfg.Webhook.Secret,
		time.Duration(cfg.Webhook.ToleranceMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("webhook verifier: %w", err)
	}

	// identity webhook: signed envelope instead of a session
	webhookHandler := handler.NewWebhookHandler(db, users, verifier)
	r.POST("/webhooks/identity", webhookHandler.HandleEvent)

	// ====== API ======
	api := r.Group("/api")
	api.GET("/auth-status", handler.AuthStatus(cfg.Auth.SessionSecret))

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.Auth.SessionSecret, users))

	protected.GET("/me", handler.GetMe(db))
	protected.GET("/webhook-status", webhookHandler.Status)

	dashboardHandler := handler.NewDashboardHandler(db, cfg.App.RecentTransactions)
	protected.GET("/dashboard", dashboardHandler.GetSummary)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.GET("/categories", categoryHandler.ListCategories)
	protected.POST("/categories", categoryHandler.CreateCategory)

	transactionHandler := handler.NewTransactionHandler(db)
	protected.GET("/transactions", transactionHandler.ListTransactions)
	protected.POST("/transactions", transactionHandler.CreateTransaction)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r, nil
}

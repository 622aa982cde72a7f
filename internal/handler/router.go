package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"keyshop/internal/handler/api"
	"keyshop/internal/handler/middleware"
	"keyshop/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, webhookHandler *api.WebhookHandler, adminOrderHandler *api.AdminOrderHandler, stockHandler *api.StockHandler, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, webhookHandler, adminOrderHandler, stockHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, webhookHandler *api.WebhookHandler, adminOrderHandler *api.AdminOrderHandler, stockHandler *api.StockHandler, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		// Gateway deliveries authenticate via the body signature, not a token.
		webhooks := apiGroup.Group("/webhooks")
		{
			addRoutes(webhooks, []route{
				{Method: http.MethodPost, Path: "/payment", Handler: webhookHandler.HandlePaymentEvent},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/orders/:id", Handler: adminOrderHandler.GetOrder},
				{Method: http.MethodPost, Path: "/orders/:id/complete", Handler: adminOrderHandler.CompleteOrder},
				{Method: http.MethodPost, Path: "/orders/:id/cancel", Handler: adminOrderHandler.CancelOrder},
				{Method: http.MethodPost, Path: "/orders/:id/resend", Handler: adminOrderHandler.ResendNotification},
				{Method: http.MethodPost, Path: "/stock/reconcile", Handler: stockHandler.Reconcile},
				{Method: http.MethodGet, Path: "/stock/report", Handler: stockHandler.Report},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}

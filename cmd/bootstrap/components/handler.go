package components

import (
	"keyshop/internal/handler"
	"keyshop/internal/handler/api"
	"keyshop/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewWebhookHandler,
		api.NewAdminOrderHandler,
		api.NewStockHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

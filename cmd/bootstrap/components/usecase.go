package components

import (
	"keyshop/internal/pkg/clock"
	"keyshop/internal/usecase/commands"
	"keyshop/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	commands.NewAllocator,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewWebhookCommands,
		commands.NewAdminCommands,
		commands.NewStockSync,
		commands.NewExpirySweeper,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOrderQueries,
	),
)

package components

import (
	"keyshop/internal/infra/catalogstore"
	"keyshop/internal/infra/notify"
	"keyshop/internal/infra/uow"
	"keyshop/internal/usecase/commands"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		uow.NewPostgresUoW,
		fx.Annotate(
			catalogstore.NewRedisCatalog,
			fx.As(new(commands.CatalogStore)),
		),
		fx.Annotate(
			notify.NewSlogDispatcher,
			fx.As(new(commands.NotificationDispatcher)),
		),
	),
)

package catalog

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/courierfare/internal/catalog/repository"
)

var Module = fx.Module("catalog",
	fx.Provide(repository.NewRepository),
)

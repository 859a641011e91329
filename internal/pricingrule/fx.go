package pricingrule

import (
	"github.com/smallbiznis/courierfare/internal/pricingrule/repository"
	"github.com/smallbiznis/courierfare/internal/pricingrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingrule.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)

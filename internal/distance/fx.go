package distance

import (
	"context"

	"go.uber.org/fx"

	"github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/distance/provider"
	"github.com/smallbiznis/courierfare/internal/distance/repository"
	"github.com/smallbiznis/courierfare/internal/distance/service"
)

var Module = fx.Module("distance.service",
	fx.Provide(
		repository.NewRepository,
		provider.NewResolver,
		service.NewService,
		func(s *service.Service) domain.Service { return s },
		service.NewJanitor,
	),
	fx.Invoke(runJanitor),
)

func runJanitor(lc fx.Lifecycle, janitor *service.Janitor) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go janitor.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

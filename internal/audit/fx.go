package audit

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/courierfare/internal/audit/repository"
	"github.com/smallbiznis/courierfare/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)

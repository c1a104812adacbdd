package mint

import (
	"go.uber.org/fx"

	"github.com/zedanazad43/stampcoin-platform/internal/mint/repository"
	"github.com/zedanazad43/stampcoin-platform/internal/mint/service"
)

var Module = fx.Module("mint.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

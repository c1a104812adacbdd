package catalog

import (
	"github.com/zedanazad43/stampcoin-platform/internal/catalog/repository"
	"github.com/zedanazad43/stampcoin-platform/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

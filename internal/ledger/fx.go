package ledger

import (
	"github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/ledger/service"
	"github.com/zedanazad43/stampcoin-platform/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.ProvideStore[domain.Distribution]),
	fx.Provide(service.New),
)

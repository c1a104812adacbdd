package serial

import (
	"github.com/zedanazad43/stampcoin-platform/internal/serial/service"
	"go.uber.org/fx"
)

var Module = fx.Module("serial.allocator",
	fx.Provide(service.New),
)

package farecalc

import (
	"github.com/smallbiznis/skyfare/internal/farecalc/service"
	"go.uber.org/fx"
)

var Module = fx.Module("farecalc.service",
	fx.Provide(service.New),
)

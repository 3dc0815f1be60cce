package flight

import (
	"github.com/smallbiznis/skyfare/internal/flight/repository"
	"github.com/smallbiznis/skyfare/internal/flight/service"
	"go.uber.org/fx"
)

var Module = fx.Module("flight.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

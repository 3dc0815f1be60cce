package farerule

import (
	"github.com/smallbiznis/skyfare/internal/farerule/repository"
	"github.com/smallbiznis/skyfare/internal/farerule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("farerule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

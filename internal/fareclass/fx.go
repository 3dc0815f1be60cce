package fareclass

import (
	"github.com/smallbiznis/skyfare/internal/fareclass/repository"
	"github.com/smallbiznis/skyfare/internal/fareclass/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fareclass.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

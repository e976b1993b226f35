package staging

import (
	"github.com/foxseedlab/tokpost/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Janitor, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewJanitor(cfg.StagingDir)
	})
}

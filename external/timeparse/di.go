package timeparse

import (
	"github.com/foxseedlab/tokpost/internal/schedule"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (schedule.Resolver, error) {
		return NewNaturalResolver(), nil
	})
}

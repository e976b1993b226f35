package upload

import (
	"github.com/foxseedlab/tokpost/internal/publisher"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Invoker, error) {
		p := do.MustInvoke[publisher.Publisher](i)
		return NewInvoker(p, publisher.DefaultVisibility), nil
	})
}

package publisher

import (
	"github.com/foxseedlab/tokpost/internal/config"
	"github.com/foxseedlab/tokpost/internal/publisher"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (publisher.Publisher, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewCLIPublisher(CLIConfig{
			Command:    c.PublisherCommand,
			ConfigPath: c.PublisherConfigPath,
			Timeout:    c.PublishTimeout,
		})
	})
}

package session

import (
	"github.com/foxseedlab/tokpost/internal/config"
	"github.com/foxseedlab/tokpost/internal/discord"
	"github.com/foxseedlab/tokpost/internal/publisher"
	"github.com/foxseedlab/tokpost/internal/repository"
	"github.com/foxseedlab/tokpost/internal/schedule"
	"github.com/foxseedlab/tokpost/internal/staging"
	"github.com/foxseedlab/tokpost/internal/upload"
	"github.com/foxseedlab/tokpost/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Store, error) {
		return NewStore(), nil
	})
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		store := do.MustInvoke[*Store](i)
		resolver := do.MustInvoke[schedule.Resolver](i)
		invoker := do.MustInvoke[*upload.Invoker](i)
		pub := do.MustInvoke[publisher.Publisher](i)
		janitor := do.MustInvoke[*staging.Janitor](i)
		repo := do.MustInvoke[repository.Repository](i)
		wh := do.MustInvoke[webhook.Sender](i)
		return NewManager(cfg, dc, store, resolver, invoker, pub, janitor, repo, wh), nil
	})
}

package leveling

import (
	"github.com/samber/do/v2"
	"github.com/yunolabs/yuno/internal/config"
	"github.com/yunolabs/yuno/internal/discord"
	"github.com/yunolabs/yuno/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Ledger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		return NewLedger(cfg, repo), nil
	})
	do.Provide(injector, func(i do.Injector) (*RankSync, error) {
		dc := do.MustInvoke[discord.Client](i)
		repo := do.MustInvoke[repository.Repository](i)
		return NewRankSync(dc, repo), nil
	})
	do.Provide(injector, func(i do.Injector) (*Awarder, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		ledger := do.MustInvoke[*Ledger](i)
		ranks := do.MustInvoke[*RankSync](i)
		return NewAwarder(cfg, repo, ledger, ranks), nil
	})
	do.Provide(injector, func(i do.Injector) (*Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		ledger := do.MustInvoke[*Ledger](i)
		ranks := do.MustInvoke[*RankSync](i)
		return NewScheduler(cfg, dc, ledger, ranks), nil
	})
}

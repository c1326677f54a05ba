package moderation

import (
	"github.com/samber/do/v2"
	"github.com/yunolabs/yuno/internal/audit"
	"github.com/yunolabs/yuno/internal/config"
	"github.com/yunolabs/yuno/internal/discord"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Filter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		dc := do.MustInvoke[discord.Client](i)
		auditSender := do.MustInvoke[audit.Sender](i)

		engine := NewEngine(cfg)
		state := NewOffenderState(cfg.SpamWindowSize)
		executor := NewExecutor(cfg, dc, auditSender)
		return NewFilter(cfg, engine, state, executor), nil
	})
}

package audit

import (
	"github.com/samber/do/v2"
	auditpkg "github.com/yunolabs/yuno/internal/audit"
	"github.com/yunolabs/yuno/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (auditpkg.Sender, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewHTTPSender(cfg.ModerationWebhookURL), nil
	})
}

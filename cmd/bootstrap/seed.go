package bootstrap

import (
	"context"
	"log/slog"

	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/usecase/commands"

	"go.uber.org/fx"
)

var SeedModule = fx.Module("seed",
	fx.Invoke(SeedAdmin),
)

// SeedAdmin creates the admin account on first start. Without
// ADMIN_PASSWORD no admin is created and admin routes stay unreachable.
func SeedAdmin(lc fx.Lifecycle, cfg config.Config, users commands.UserCommands) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.Admin.Password == "" {
				slog.Warn("ADMIN_PASSWORD not set, skipping admin seed")
				return nil
			}
			created, err := users.SeedAdmin(ctx, commands.RegisterRequest{
				Name:     cfg.Admin.Name,
				Email:    cfg.Admin.Email,
				Password: cfg.Admin.Password,
			})
			if err != nil {
				return err
			}
			if created {
				slog.Info("admin account created", "name", cfg.Admin.Name)
			}
			return nil
		},
	})
}

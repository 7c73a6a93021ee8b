// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

// Command seed provisions the bootstrap administrator account.
//
// It is idempotent: if an account with the configured email already exists,
// the command logs and exits without touching it. Run it once against a fresh
// database, or on every deploy; the result is the same.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sentra-id/sentra/internal/platform/migration"
	pgstore "github.com/sentra-id/sentra/internal/platform/postgres"
	"github.com/sentra-id/sentra/internal/platform/sec"
	"github.com/sentra-id/sentra/internal/users/account"
)

// seedConfig is the minimal environment the seeder needs. It deliberately
// does not reuse the API server config: the seeder has no business knowing
// mail or JWT settings.
type seedConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	AdminName     string `env:"SEED_ADMIN_NAME"  envDefault:"Administrator"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL,required"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD,required"`
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", "sentra-seed"))

	if err := run(log); err != nil {
		log.Error("seed failure", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg := &seedConfig{}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("seed: failed to parse environment variables: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return err
	}

	repository := account.NewAccountRepository(pool)

	// Idempotency check
	if existing, err := repository.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		log.Info("admin_account_present",
			slog.String("user_id", existing.ID),
			slog.String("role", string(existing.Role)),
		)
		return nil
	}

	// The account service handles hashing and role validation; its audit log
	// output is noise here, so it gets a silent logger.
	service := account.NewService(repository, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	admin, err := service.Create(ctx, account.CreateInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     sec.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed: failed to create admin account: %w", err)
	}

	log.Info("admin_account_created", slog.String("user_id", admin.ID))

	return nil
}

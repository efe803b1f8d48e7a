// Command supporterctl manages the supporter table from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"supporterboard/internal/adapter/repo"
	"supporterboard/internal/infra"
)

func main() {
	_ = godotenv.Load()

	root := newRootCmd(&cli{
		connect:   connectPostgres,
		jwtSecret: func() string { return os.Getenv("JWT_SECRET") },
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// connectPostgres opens the database named by DATABASE_URL.
func connectPostgres(ctx context.Context) (*backend, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.StoreDriver != infra.StoreDriverPostgres {
		return nil, fmt.Errorf("supporterctl needs STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "supporterctl").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	return &backend{
		store: repo.NewSupporterRepository(runner),
		migrate: func(ctx context.Context) error {
			return infra.EnsureSchema(ctx, runner, cfg.NotifyChannel)
		},
		close: pool.Close,
	}, nil
}

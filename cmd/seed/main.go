// Command seed fills a backend with fake transactions for local
// development. It goes through the service layer so the balance
// invariant and category dedup behave exactly like production traffic.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"

	"gofinances/internal/backend"
	"gofinances/internal/config"
	"gofinances/internal/core"
	applog "gofinances/internal/log"
	"gofinances/internal/services"
)

var categories = []string{"Food", "Transport", "Housing", "Salary", "Leisure", "Health", "Others"}

func main() {
	_ = godotenv.Load()

	count := flag.Int("count", 50, "number of transactions to create")
	userID := flag.String("user", "seed-user", "user id to attach transactions to")
	flag.Parse()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	stores, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if stores.Cleanup != nil {
		defer func() {
			if err := stores.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	svc := services.NewTransactionService(stores.Transactions, stores.Categories, nil)

	created := 0
	skipped := 0
	for i := 0; i < *count; i++ {
		in := fakeTransaction(*userID)
		if _, err := svc.Create(ctx, in); err != nil {
			// Outcomes that would overdraw the balance are expected to
			// fail; count them and move on.
			skipped++
			continue
		}
		created++
	}

	balance, err := svc.Balance(ctx, *userID)
	if err != nil {
		logger.Error("Failed to compute balance", "error", err)
		os.Exit(1)
	}

	logger.Info("Seeding completed",
		"backend", cfg.DataBackend,
		"user_id", *userID,
		"created", created,
		"skipped", skipped,
		"total", balance.Total.String())
}

func fakeTransaction(userID string) services.CreateInput {
	typ := core.Income
	// Roughly one outcome for every two incomes keeps the balance
	// positive enough for most outcomes to pass the invariant.
	if gofakeit.Number(1, 3) == 1 {
		typ = core.Outcome
	}

	return services.CreateInput{
		Title:         gofakeit.ProductName(),
		CategoryTitle: categories[gofakeit.Number(0, len(categories)-1)],
		Type:          typ,
		Value:         core.Money{Cents: int64(gofakeit.Number(100, 500000))},
		UserID:        userID,
	}
}

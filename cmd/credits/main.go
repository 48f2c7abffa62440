package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"scribe/internal/adapter/repo"
	"scribe/internal/domain"
	"scribe/internal/infra"
)

func main() {
	_ = godotenv.Load()

	var (
		userFlag    string
		statusFlag  string
		creditsFlag int
		addFlag     bool
		showFlag    bool
	)
	flag.StringVar(&userFlag, "user", "", "user ID whose credit account to update")
	flag.StringVar(&statusFlag, "status", domain.SubscriptionActive, "subscription status to assign (active, inactive, cancelled)")
	flag.IntVar(&creditsFlag, "credits", 10, "credit balance to set, or to add with -add")
	flag.BoolVar(&addFlag, "add", false, "add -credits to the current balance instead of replacing it")
	flag.BoolVar(&showFlag, "show", false, "print the current account and exit")
	flag.Parse()

	userID := strings.TrimSpace(userFlag)
	status := strings.TrimSpace(strings.ToLower(statusFlag))
	if userID == "" {
		exitWithError(errors.New("-user is required"))
	}
	switch status {
	case domain.SubscriptionActive, "inactive", "cancelled":
	default:
		exitWithError(fmt.Errorf("unsupported status %q", status))
	}
	if !addFlag && creditsFlag < 0 {
		exitWithError(errors.New("-credits must be >= 0 unless -add is set"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "credits").Logger()
	credits := repo.NewCreditRepository(infra.NewSQLRunner(pool, logger))

	if showFlag {
		acct, err := credits.Account(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				exitWithError(fmt.Errorf("no credit account for user %s", userID))
			}
			exitWithError(fmt.Errorf("failed to load account: %w", err))
		}
		printAccount(acct)
		return
	}

	acct, err := credits.Upsert(ctx, userID, status, creditsFlag, addFlag)
	if err != nil {
		exitWithError(fmt.Errorf("failed to update credit account: %w", err))
	}
	printAccount(acct)
}

func printAccount(acct *domain.CreditAccount) {
	fmt.Printf("User %s subscription=%s\n", acct.UserID, acct.SubscriptionStatus)
	fmt.Printf("remaining_credits=%d\n", acct.RemainingCredits)
	fmt.Printf("updated_at=%s\n", acct.UpdatedAt.UTC().Format(time.RFC3339))
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dreamchain/cmd"
	"dreamchain/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const migrateUsage = "usage: dreamchain migrate <up|down [steps]|status>"

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "migrate" {
		// DATABASE_URL may live in a local .env when migrating by hand.
		_ = godotenv.Load()
		if err := runMigrate(args[1:]); err != nil {
			log.WithError(err).Fatal("Migration failed")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("dreamchain exited with error")
	}
}

func runMigrate(args []string) error {
	if len(args) == 0 {
		return errors.New(migrateUsage)
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migrate command %q; %s", args[0], migrateUsage)
	}
}

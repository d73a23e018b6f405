package main

// Run database migrations:
//   go run ./cmd/migrate up

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"tailored-cv-web/internal/shared/config"
	"tailored-cv-web/internal/shared/storage/db"
)

func main() {
	app := &cli.Command{
		Name:  "migrate",
		Usage: "manage the sessions database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Postgres connection string (defaults to DATABASE_URL)",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Action: withDB(db.RunMigrations),
			},
			{
				Name:   "down",
				Usage:  "roll back the most recent migration",
				Action: withDB(db.RollbackMigration),
			},
			{
				Name:   "status",
				Usage:  "print the state of each migration",
				Action: withDB(db.MigrationStatus),
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Printf("migrate: %v", err)
		os.Exit(1)
	}
}

func withDB(fn func(context.Context, *sql.DB) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		databaseURL := cmd.String("database-url")
		if databaseURL == "" {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			databaseURL = cfg.DatabaseURL
		}
		sqlDB, err := db.Connect(ctx, databaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return fn(ctx, sqlDB)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/utilities"
)

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Portfolio site and admin API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// load .env file if present so os.Getenv picks values from it
		// this is best-effort: if no .env exists, continue (use defaults or real env)
		_ = godotenv.Load()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "portfolio: %v\n", err)
		os.Exit(1)
	}
}

// env is the logger and database every command starts from.
type env struct {
	log   *zap.Logger
	sugar *zap.SugaredLogger
	dbCfg database.Config
	db    *sqlx.DB
}

func openEnv() (*env, error) {
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg := database.ConfigFromEnv()
	db, err := database.Open(cfg)
	if err != nil {
		_ = lg.Sync()
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return &env{log: lg, sugar: lg.Sugar(), dbCfg: cfg, db: db}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
	_ = e.log.Sync()
}

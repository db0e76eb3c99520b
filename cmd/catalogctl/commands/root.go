package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/config"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbURL   string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Administer the marketplace catalog",
	Long: `catalogctl manages the marketplace catalog database.

Connection settings come from the same environment variables (and .env file)
as the server. --db overrides them with a full connection URL.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.LoadEnv()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to POSTGRES_* settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
}

func connect() (*sqlx.DB, error) {
	pg := &postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    2,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
	}
	dsn := pg.DSN()
	if dbURL != "" {
		dsn = dbURL
	}
	return postgres.Connect(dsn, pg)
}

func newLogger() logger.ZapLogger {
	if !verbose {
		return logger.NewNop()
	}
	return logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment: true,
		Encoding:      "console",
		Level:         "debug",
	})
}

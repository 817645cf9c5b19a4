package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ecotrack.dev/ecotrack/internal/api"
	"ecotrack.dev/ecotrack/internal/auth"
	"ecotrack.dev/ecotrack/internal/store"
	"ecotrack.dev/ecotrack/pkg/metrics"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server that:
- Authenticates users and issues bearer tokens
- Serves CRUD endpoints for zones, sources, and indicators
- Serves the filtered and paginated indicator listing
- Serves per-zone, trend, and summary statistics`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	apiCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	apiCmd.Flags().String("db-user", "postgres", "PostgreSQL user")
	apiCmd.Flags().String("db-password", "", "PostgreSQL password")
	apiCmd.Flags().String("db-name", "ecotrack", "PostgreSQL database name")
	apiCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	apiCmd.Flags().Int("http-port", 8080, "HTTP server port")
	apiCmd.Flags().String("jwt-secret", "", "secret used to sign bearer tokens")
	apiCmd.Flags().Duration("token-ttl", auth.DefaultTokenTTL, "bearer token lifetime")

	_ = viper.BindPFlag("api.db.host", apiCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("api.db.port", apiCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("api.db.user", apiCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("api.db.password", apiCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("api.db.name", apiCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("api.db.sslmode", apiCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("api.http.port", apiCmd.Flags().Lookup("http-port"))
	_ = viper.BindPFlag("api.jwt.secret", apiCmd.Flags().Lookup("jwt-secret"))
	_ = viper.BindPFlag("api.jwt.ttl", apiCmd.Flags().Lookup("token-ttl"))
}

func runAPI(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting API service")

	db, err := store.NewDB(&store.DBConfig{
		Logger:   logger,
		Host:     viper.GetString("api.db.host"),
		Port:     viper.GetInt("api.db.port"),
		User:     viper.GetString("api.db.user"),
		Password: viper.GetString("api.db.password"),
		DBName:   viper.GetString("api.db.name"),
		SSLMode:  viper.GetString("api.db.sslmode"),
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	defer func() {
		if err := store.CloseDB(db, logger); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	st, err := store.New(logger, db)
	if err != nil {
		logger.Error("failed to create store", "error", err)
		return err
	}

	ttl := viper.GetDuration("api.jwt.ttl")
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}

	tokens, err := auth.NewTokens(viper.GetString("api.jwt.secret"), ttl)
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		return err
	}

	server, err := api.NewServer(&api.ServerConfig{
		Logger:   logger,
		Store:    st,
		Tokens:   tokens,
		Metrics:  metrics.NewAPIMetrics("ecotrack"),
		HTTPPort: viper.GetInt("api.http.port"),
	})
	if err != nil {
		logger.Error("failed to create API server", "error", err)
		return err
	}

	logger.Info("API server configuration",
		"db_host", viper.GetString("api.db.host"),
		"db_name", viper.GetString("api.db.name"),
		"http_port", viper.GetInt("api.http.port"),
		"token_ttl", ttl.String(),
	)

	if err := server.Run(context.Background()); err != nil {
		logger.Error("API server error", "error", err)
		return err
	}

	logger.Info("API server stopped")
	return nil
}

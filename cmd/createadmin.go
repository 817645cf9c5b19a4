package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ecotrack.dev/ecotrack/internal/auth"
	"ecotrack.dev/ecotrack/internal/store"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create or promote an admin account",
	Long: `Create an admin account, or promote the account to admin if the
username already exists. The account is activated either way.`,
	RunE: runCreateAdmin,
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	createAdminCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	createAdminCmd.Flags().String("db-user", "postgres", "PostgreSQL user")
	createAdminCmd.Flags().String("db-password", "", "PostgreSQL password")
	createAdminCmd.Flags().String("db-name", "ecotrack", "PostgreSQL database name")
	createAdminCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	createAdminCmd.Flags().String("email", "", "admin email address")
	createAdminCmd.Flags().String("username", "", "admin username")
	createAdminCmd.Flags().String("password", "", "admin password")

	_ = viper.BindPFlag("admin.db.host", createAdminCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("admin.db.port", createAdminCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("admin.db.user", createAdminCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("admin.db.password", createAdminCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("admin.db.name", createAdminCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("admin.db.sslmode", createAdminCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("admin.email", createAdminCmd.Flags().Lookup("email"))
	_ = viper.BindPFlag("admin.username", createAdminCmd.Flags().Lookup("username"))
	_ = viper.BindPFlag("admin.password", createAdminCmd.Flags().Lookup("password"))
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	logger := GetLogger()

	email := viper.GetString("admin.email")
	username := viper.GetString("admin.username")
	password := viper.GetString("admin.password")
	if email == "" || username == "" || password == "" {
		return errors.New("email, username, and password are required")
	}

	db, err := store.NewDB(&store.DBConfig{
		Logger:   logger,
		Host:     viper.GetString("admin.db.host"),
		Port:     viper.GetInt("admin.db.port"),
		User:     viper.GetString("admin.db.user"),
		Password: viper.GetString("admin.db.password"),
		DBName:   viper.GetString("admin.db.name"),
		SSLMode:  viper.GetString("admin.db.sslmode"),
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

	ctx := cmd.Context()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	existing, err := st.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		role := store.RoleAdmin
		active := true
		if _, err := st.UpdateUser(ctx, existing.ID, store.UserUpdate{
			Role:           &role,
			IsActive:       &active,
			HashedPassword: &hash,
		}); err != nil {
			return fmt.Errorf("failed to promote user: %w", err)
		}
		logger.Info("promoted existing user to admin", "username", username)

	case errors.Is(err, store.ErrNotFound):
		user := &store.User{
			Email:          email,
			Username:       username,
			HashedPassword: hash,
			Role:           store.RoleAdmin,
			IsActive:       true,
		}
		if err := st.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		logger.Info("created admin user", "username", username)

	default:
		return fmt.Errorf("failed to look up user: %w", err)
	}

	return nil
}

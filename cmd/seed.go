package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ecotrack.dev/ecotrack/internal/store"
	"ecotrack.dev/ecotrack/pkg/generator"
)

// seedCity is a demo zone loaded by the seed command.
type seedCity struct {
	name       string
	postalCode string
	geom       string
}

var seedCities = []seedCity{
	{name: "Paris", postalCode: "75000", geom: "48.8566,2.3522"},
	{name: "Lyon", postalCode: "69000", geom: "45.7640,4.8357"},
	{name: "Marseille", postalCode: "13000", geom: "43.2965,5.3698"},
	{name: "Toulouse", postalCode: "31000", geom: "43.6047,1.4442"},
	{name: "Nice", postalCode: "06000", geom: "43.7102,7.2620"},
}

type seedSource struct {
	name        string
	url         string
	description string
	frequency   string
}

var seedSources = []seedSource{
	{
		name:        "Atmo France",
		url:         "https://www.atmo-france.org",
		description: "Federated air quality monitoring network",
		frequency:   "hourly",
	},
	{
		name:        "Citepa",
		url:         "https://www.citepa.org",
		description: "National emission inventories",
		frequency:   "daily",
	},
	{
		name:        "Enedis Open Data",
		url:         "https://data.enedis.fr",
		description: "Electricity distribution measurements",
		frequency:   "daily",
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data into the database",
	Long: `Load demo data into the database:
- Five French city zones
- Three monitoring sources
- Several days of generated air quality, CO2, and energy readings`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	seedCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	seedCmd.Flags().String("db-user", "postgres", "PostgreSQL user")
	seedCmd.Flags().String("db-password", "", "PostgreSQL password")
	seedCmd.Flags().String("db-name", "ecotrack", "PostgreSQL database name")
	seedCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	seedCmd.Flags().Int("days", 7, "number of past days to generate readings for")
	seedCmd.Flags().Int("readings-per-day", 4, "readings per kind per zone per day")

	_ = viper.BindPFlag("seed.db.host", seedCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("seed.db.port", seedCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("seed.db.user", seedCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("seed.db.password", seedCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("seed.db.name", seedCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("seed.db.sslmode", seedCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("seed.days", seedCmd.Flags().Lookup("days"))
	_ = viper.BindPFlag("seed.readings_per_day", seedCmd.Flags().Lookup("readings-per-day"))
}

func runSeed(cmd *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("seeding demo data")

	db, err := store.NewDB(&store.DBConfig{
		Logger:   logger,
		Host:     viper.GetString("seed.db.host"),
		Port:     viper.GetInt("seed.db.port"),
		User:     viper.GetString("seed.db.user"),
		Password: viper.GetString("seed.db.password"),
		DBName:   viper.GetString("seed.db.name"),
		SSLMode:  viper.GetString("seed.db.sslmode"),
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

	zones := make([]*store.Zone, 0, len(seedCities))
	for _, city := range seedCities {
		zone := &store.Zone{
			Name:       city.name,
			PostalCode: ptr(city.postalCode),
			Geom:       ptr(city.geom),
		}
		if err := st.FindOrCreateZone(ctx, zone); err != nil {
			return fmt.Errorf("failed to seed zone %s: %w", city.name, err)
		}
		zones = append(zones, zone)
	}
	logger.Info("seeded zones", "count", len(zones))

	sources := make([]*store.Source, 0, len(seedSources))
	for _, src := range seedSources {
		source := &store.Source{
			Name:        src.name,
			URL:         ptr(src.url),
			Description: ptr(src.description),
			Frequency:   ptr(src.frequency),
		}
		if err := st.FindOrCreateSource(ctx, source); err != nil {
			return fmt.Errorf("failed to seed source %s: %w", src.name, err)
		}
		sources = append(sources, source)
	}
	logger.Info("seeded sources", "count", len(sources))

	days := viper.GetInt("seed.days")
	perDay := viper.GetInt("seed.readings_per_day")
	if days <= 0 || perDay <= 0 {
		return fmt.Errorf("days and readings-per-day must be positive")
	}

	kinds := []string{generator.KindAirQuality, generator.KindCO2, generator.KindEnergy}
	step := 24 * time.Hour / time.Duration(perDay)
	start := time.Now().UTC().AddDate(0, 0, -days).Truncate(time.Hour)

	var stored int
	for zi, zone := range zones {
		for ki, kind := range kinds {
			gen := generator.NewReadingGenerator(kind)
			source := sources[(zi+ki)%len(sources)]

			for t := start; t.Before(time.Now().UTC()); t = t.Add(step) {
				reading := gen.At(t)
				indicator := &store.Indicator{
					Kind:      reading.Kind,
					Value:     reading.Value,
					Unit:      reading.Unit,
					Timestamp: reading.Timestamp,
					ZoneID:    zone.ID,
					SourceID:  source.ID,
				}
				if err := st.CreateIndicator(ctx, indicator); err != nil {
					return fmt.Errorf("failed to seed indicator: %w", err)
				}
				stored++
			}
		}
	}

	logger.Info("seeded indicators", "count", stored)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper). The storage
// connection is passed down explicitly from here; nothing initializes
// globally behind the scenes.
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	ImportPath          string // default CSV file or directory for the importer CLI
	SeedRegions         bool   // load the canonical region set at startup
	FrontendURLEndsWith string // allowed CORS origin suffix for the dashboard
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		ImportPath:          viper.GetString("IMPORT_PATH"),
		SeedRegions:         strings.EqualFold(viper.GetString("SEED_REGIONS"), "true"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
	}, nil
}

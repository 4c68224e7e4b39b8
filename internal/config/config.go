package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string `mapstructure:"database_url"`
	RedisURL    string `mapstructure:"redis_url"`
	Port        string `mapstructure:"port"`

	// PublicURL is the frontend base URL used for auth callback redirects
	PublicURL string `mapstructure:"public_url"`

	// Supabase (identity gateway)
	SupabaseURL            string `mapstructure:"supabase_url"`
	SupabaseAnonKey        string `mapstructure:"supabase_anon_key"`
	SupabaseServiceRoleKey string `mapstructure:"supabase_service_role_key"`
	SupabaseJWTSecret      string `mapstructure:"supabase_jwt_secret"`

	// Push notifications
	FirebaseCredentialsFile string `mapstructure:"firebase_credentials_file"`

	// Background stats worker
	StatsRefreshSeconds int `mapstructure:"stats_refresh_seconds"`
}

// App holds the global config instance
var App Config

// LoadConfig loads configuration from file and environment variables
func LoadConfig(path string) error {
	// Auto-load .env file if present so 'go run' works without exporting vars.
	// Missing .env is fine (Production/Docker set real env vars).
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	v := viper.New()

	// Set default values
	v.SetDefault("port", "8080")
	v.SetDefault("public_url", "http://localhost:3000")
	v.SetDefault("stats_refresh_seconds", 300)

	// Config file settings
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("dev.config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("cargowatch")

	// Bind standard environment variables (Docker/deploy compatibility)
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("public_url", "PUBLIC_URL")

	// Bind Supabase env vars
	_ = v.BindEnv("supabase_url", "SUPABASE_URL")
	_ = v.BindEnv("supabase_anon_key", "SUPABASE_ANON_KEY")
	_ = v.BindEnv("supabase_service_role_key", "SUPABASE_SERVICE_ROLE_KEY")
	_ = v.BindEnv("supabase_jwt_secret", "SUPABASE_JWT_SECRET")

	_ = v.BindEnv("firebase_credentials_file", "FIREBASE_CREDENTIALS_FILE")
	_ = v.BindEnv("stats_refresh_seconds", "STATS_REFRESH_SECONDS")

	v.AutomaticEnv()

	// 1. Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and environment variables")
		} else {
			return err
		}
	} else {
		log.Printf("Loaded config from: %s", v.ConfigFileUsed())
	}

	// 2. Unmarshal into struct
	if err := v.Unmarshal(&App); err != nil {
		return err
	}

	// 3. Backfill environment variables for code that still uses os.Getenv()
	setEnvIfEmpty("DATABASE_URL", App.DatabaseURL)
	setEnvIfEmpty("REDIS_URL", App.RedisURL)
	setEnvIfEmpty("PORT", App.Port)
	setEnvIfEmpty("PUBLIC_URL", App.PublicURL)

	setEnvIfEmpty("SUPABASE_URL", App.SupabaseURL)
	setEnvIfEmpty("SUPABASE_ANON_KEY", App.SupabaseAnonKey)
	setEnvIfEmpty("SUPABASE_SERVICE_ROLE_KEY", App.SupabaseServiceRoleKey)
	setEnvIfEmpty("SUPABASE_JWT_SECRET", App.SupabaseJWTSecret)

	setEnvIfEmpty("FIREBASE_CREDENTIALS_FILE", App.FirebaseCredentialsFile)

	return nil
}

func setEnvIfEmpty(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		os.Setenv(key, value)
	}
}

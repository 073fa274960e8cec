package config

import (
	"fmt"
	"reflect"
	"strings"

	"catalog-sync/core/cachestore"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/server"
	"catalog-sync/core/storage"
	"catalog-sync/feature/ecom"
	"catalog-sync/feature/retail"
	"catalog-sync/feature/sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Retail holds the retail backend endpoint, credentials and retry policy.
	Retail retail.Config `mapstructure:"retail"`
	// Ecom holds the eCom backend endpoint, credentials and retry policy.
	Ecom ecom.Config `mapstructure:"ecom"`
	// Sync holds run defaults for the sync command.
	Sync sync.Config `mapstructure:"sync"`
	// Cache selects where the identity cache lives.
	Cache cachestore.Config `mapstructure:"cache"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Redis holds configuration for the redis cache driver.
	Redis cachestore.RedisConfig `mapstructure:"redis"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// 2. Register every key with its default
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// 3. Validate
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")

		// Squashed structs share the parent prefix
		if opts == "squash" && field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), prefix)
			continue
		}

		// Build the key
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}

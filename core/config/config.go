package config

import (
	"reflect"
	"strings"

	"ixp-tracker/core/database"
	"ixp-tracker/core/logger"
	"ixp-tracker/core/metrics"
	"ixp-tracker/core/server"
	"ixp-tracker/core/storage"
	"ixp-tracker/feature/archive"
	"ixp-tracker/feature/lookup"
	"ixp-tracker/feature/registry"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations owned by the packages that consume them.
type Config struct {
	// Registry holds configuration for the remote network registry API.
	Registry registry.Config `mapstructure:"registry"`
	// Archive holds configuration for the historical snapshot archive.
	Archive archive.Config `mapstructure:"archive"`
	// Lookup selects and tunes the ASN lookup provider.
	Lookup lookup.Config `mapstructure:"lookup"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the object storage used to mirror archive dumps.
	Storage storage.Config `mapstructure:"storage"`
	// Server holds configuration for the read-only stats API.
	Server server.Config `mapstructure:"server"`
	// Metrics holds configuration for the batch metrics export.
	Metrics metrics.Config `mapstructure:"metrics"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Missing .env is fine, production passes real environment variables.
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// REGISTRY_API_KEY -> registry.api_key
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}

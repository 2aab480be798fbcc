package config

import (
	"reflect"
	"strings"

	"lake-validator/core/logger"
	"lake-validator/core/reconcile"
	"lake-validator/core/schema"
	"lake-validator/core/storage"
	"lake-validator/core/warehouse"
	"lake-validator/feature/dicom"
	"lake-validator/feature/fhir"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Fhir holds configuration for the FHIR search API.
	Fhir fhir.Config `mapstructure:"fhir"`
	// Dicom holds configuration for the DICOM changefeed API.
	Dicom dicom.Config `mapstructure:"dicom"`
	// Warehouse holds configuration for the SQL warehouse connection.
	Warehouse warehouse.Config `mapstructure:"warehouse"`
	// Schema holds configuration for loading schema documents.
	Schema schema.Config `mapstructure:"schema"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Validation holds configuration for the reconciliation run.
	Validation reconcile.Config `mapstructure:"validation"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// legacyEnv lists environment variables accepted in addition to the derived key.
var legacyEnv = map[string]string{
	"warehouse.username": "SQL_USERNAME",
	"warehouse.password": "SQL_PASSWORD",
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

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. FHIR_SERVER_URL -> fhir.server_url)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		derived := strings.ToUpper(replacer.Replace(key))
		if err := v.BindEnv(key, derived, legacy); err != nil {
			return nil, err
		}
	}

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

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
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

package config

import (
	"fmt"
	"strings"

	"github.com/marketscope/marketscope/internal"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// We're bootstrapping so avoid any imports from other packages
var log = logrus.New()

var defaults = map[string]any{
	"model.name":                        "sentence-transformers/all-mpnet-base-v2",
	"clustering.k":                      20,
	"clustering.tau":                    0.55,
	"clustering.alpha":                  0.6,
	"clustering.seed":                   42,
	"clustering.n_samples":              5,
	"clustering.graph_block_size":       1024,
	"encoder.provider":                  "local",
	"encoder.batch_size":                32,
	"encoder.cache_path":                "",
	"encoder.local.server_url":          "http://localhost:5557",
	"encoder.local.timeout_seconds":     60,
	"encoder.openai.endpoint":           "https://api.openai.com/v1",
	"encoder.openai.org_id":             "",
	"encoder.openai.max_request_tokens": 200000,
	"data.input_path":                   "data/companies.csv",
	"data.output_dir":                   "output",
	"log.level":                         "info",
	"log.format":                        "text",
}

// LoadConfig loads the config file and ENV variables into a Config struct.
// Constraint violations (tau/alpha outside [0,1], k <= 0) are rejected here,
// before any pipeline stage runs.
func LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetConfigType("yaml")

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	viper.SetEnvPrefix("MSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Warn("no config file found, using defaults and environment")
	}

	// Environment variables take precedence over config file
	loadDotEnv()

	err := viper.BindEnv("encoder.openai.api_key", "MSCOPE_OPENAI_API_KEY")
	if err != nil {
		log.Fatalf("Error binding environment variable: %s", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate applies the field-level constraints declared on Config.
// Out-of-range values are errors, never clamped.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// loadDotEnv loads environment variables from .env file
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Debug(".env file not found or unable to load")
	}
}

// SetLogLevel sets the log level based on the config file. Defaults to INFO if not set or invalid
func SetLogLevel(cfg *Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	internal.SetLogLevel(level)
	if cfg.Log.Format == "json" {
		internal.UseJSONFormatter()
	}
	log.Info("Log level set to: ", level)
}

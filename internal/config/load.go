package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. WORDECK_SERVER_PORT or WORDECK_TTS_GEMINI_API_KEY.
const EnvPrefix = "WORDECK"

// keys without a default still need binding so AutomaticEnv values reach Unmarshal.
var boundKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"tts.gemini_api_key",
	"storage.minio_endpoint",
	"storage.minio_access_key",
	"storage.minio_secret_key",
	"storage.minio_bucket",
}

// Load reads configuration from defaults, an optional config.yaml in the
// working directory and WORDECK_* environment variables, in increasing
// order of precedence. The result is validated before it is returned.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.issuer", "wordeck")

	v.SetDefault("learning.review_interval_seconds", 60)
	v.SetDefault("learning.dampening_factor", 5.0)
	v.SetDefault("learning.default_learning_session_size", 5)
	v.SetDefault("learning.max_learning_session_size", 50)
	v.SetDefault("learning.max_folder_name_length", 50)
	v.SetDefault("learning.max_deck_name_length", 50)
	v.SetDefault("learning.max_card_word_length", 100)
	v.SetDefault("learning.max_card_description_length", 100)
	v.SetDefault("learning.max_folder_depth", 256)

	v.SetDefault("tts.provider", "none")
	v.SetDefault("tts.model_name", "gemini-2.5-flash-preview-tts")
	v.SetDefault("tts.female_voice", "Kore")
	v.SetDefault("tts.male_voice", "Puck")
	v.SetDefault("tts.max_concurrent", 4)
	v.SetDefault("tts.requests_per_second", 2.0)
	v.SetDefault("tts.burst", 4)
	v.SetDefault("tts.timeout_seconds", 30)
	v.SetDefault("tts.max_retries", 3)
	v.SetDefault("tts.retry_delay_seconds", 1)

	v.SetDefault("storage.backend", "filesystem")
	v.SetDefault("storage.local_dir", "./data")
	v.SetDefault("storage.public_prefix", "public/tts")
	v.SetDefault("storage.minio_use_ssl", false)
}

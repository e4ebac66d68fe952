package config

// Config holds all application configuration settings.
// Fields are populated by viper (mapstructure tags) and checked by validator.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Learning LearningConfig `mapstructure:"learning" validate:"required"`
	TTS      TTSConfig      `mapstructure:"tts"      validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
}

// ServerConfig defines server-specific settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig defines database connection settings.
// The memory driver keeps everything in process and is meant for local runs.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver"                    validate:"required,oneof=postgres memory"`
	URL                    string `mapstructure:"url"                       validate:"required_if=Driver postgres"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig defines how bearer tokens are verified.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer    string `mapstructure:"issuer"`
}

// LearningConfig carries the numeric constants of the learning model.
type LearningConfig struct {
	ReviewIntervalSeconds      int     `mapstructure:"review_interval_seconds"       validate:"gt=0"`
	DampeningFactor            float64 `mapstructure:"dampening_factor"              validate:"gte=1"`
	DefaultLearningSessionSize int     `mapstructure:"default_learning_session_size" validate:"gt=0"`
	MaxLearningSessionSize     int     `mapstructure:"max_learning_session_size"     validate:"gtefield=DefaultLearningSessionSize"`
	MaxFolderNameLength        int     `mapstructure:"max_folder_name_length"        validate:"gt=0"`
	MaxDeckNameLength          int     `mapstructure:"max_deck_name_length"          validate:"gt=0"`
	MaxCardWordLength          int     `mapstructure:"max_card_word_length"          validate:"gt=0"`
	MaxCardDescriptionLength   int     `mapstructure:"max_card_description_length"   validate:"gt=0"`
	MaxFolderDepth             int     `mapstructure:"max_folder_depth"              validate:"gt=0"`
}

// TTSConfig defines the speech synthesis collaborator.
type TTSConfig struct {
	Provider          string  `mapstructure:"provider"            validate:"required,oneof=gemini none"`
	GeminiAPIKey      string  `mapstructure:"gemini_api_key"      validate:"required_if=Provider gemini"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	FemaleVoice       string  `mapstructure:"female_voice"        validate:"required"`
	MaleVoice         string  `mapstructure:"male_voice"          validate:"required"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"      validate:"gt=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `mapstructure:"burst"               validate:"gt=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"     validate:"gt=0"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gt=0"`
}

// StorageConfig defines where generated audio is kept.
type StorageConfig struct {
	Backend        string `mapstructure:"backend"          validate:"required,oneof=filesystem minio"`
	LocalDir       string `mapstructure:"local_dir"        validate:"required_if=Backend filesystem"`
	PublicPrefix   string `mapstructure:"public_prefix"    validate:"required"`
	MinIOEndpoint  string `mapstructure:"minio_endpoint"   validate:"required_if=Backend minio"`
	MinIOAccessKey string `mapstructure:"minio_access_key" validate:"required_if=Backend minio"`
	MinIOSecretKey string `mapstructure:"minio_secret_key" validate:"required_if=Backend minio"`
	MinIOBucket    string `mapstructure:"minio_bucket"     validate:"required_if=Backend minio"`
	MinIOUseSSL    bool   `mapstructure:"minio_use_ssl"`
}

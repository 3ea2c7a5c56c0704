// Package config provides configuration loading and validation for housekeeperd.
// Supports YAML files with environment variable overrides.
package config

// Config holds all configuration for housekeeperd.
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	ObjectStore   ObjectStoreConfig   `yaml:"objectStore"`
	Jobs          JobsConfig          `yaml:"jobs"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// Document database backends.
const (
	DatabaseFirestore = "firestore"
	DatabaseOxia      = "oxia"
	DatabaseMemory    = "memory"
)

type DatabaseConfig struct {
	Backend string `yaml:"backend" env:"HOUSEKEEPER_DB_BACKEND"`

	// Firestore
	ProjectID       string `yaml:"projectId" env:"HOUSEKEEPER_FIRESTORE_PROJECT_ID"`
	DatabaseID      string `yaml:"databaseId" env:"HOUSEKEEPER_FIRESTORE_DATABASE_ID"`
	CredentialsFile string `yaml:"credentialsFile" env:"HOUSEKEEPER_FIRESTORE_CREDENTIALS_FILE"`

	// Oxia
	OxiaEndpoint         string `yaml:"oxiaEndpoint" env:"HOUSEKEEPER_OXIA_ENDPOINT"`
	OxiaNamespace        string `yaml:"oxiaNamespace" env:"HOUSEKEEPER_OXIA_NAMESPACE"`
	OxiaRequestTimeoutMs int64  `yaml:"oxiaRequestTimeoutMs" env:"HOUSEKEEPER_OXIA_REQUEST_TIMEOUT_MS"`
	KeyRoot              string `yaml:"keyRoot" env:"HOUSEKEEPER_OXIA_KEY_ROOT"`
}

// Object store backends.
const (
	ObjectStoreGCS    = "gcs"
	ObjectStoreS3     = "s3"
	ObjectStoreMinIO  = "minio"
	ObjectStoreMemory = "memory"
)

type ObjectStoreConfig struct {
	Backend         string `yaml:"backend" env:"HOUSEKEEPER_OBJECTSTORE_BACKEND"`
	Bucket          string `yaml:"bucket" env:"HOUSEKEEPER_BUCKET"`
	CredentialsFile string `yaml:"credentialsFile" env:"HOUSEKEEPER_GCS_CREDENTIALS_FILE"`
	Endpoint        string `yaml:"endpoint" env:"HOUSEKEEPER_S3_ENDPOINT"`
	Region          string `yaml:"region" env:"HOUSEKEEPER_S3_REGION"`
	AccessKey       string `yaml:"accessKey" env:"HOUSEKEEPER_S3_ACCESS_KEY"`
	SecretKey       string `yaml:"secretKey" env:"HOUSEKEEPER_S3_SECRET_KEY"`
	UsePathStyle    bool   `yaml:"usePathStyle" env:"HOUSEKEEPER_S3_PATH_STYLE"`
	UseSSL          bool   `yaml:"useSSL" env:"HOUSEKEEPER_MINIO_USE_SSL"`
}

type JobsConfig struct {
	Timezone string           `yaml:"timezone" env:"HOUSEKEEPER_TIMEZONE"`
	Expiry   ExpiryJobConfig  `yaml:"expiry"`
	Storage  StorageJobConfig `yaml:"storage"`
}

type ExpiryJobConfig struct {
	Enabled     bool   `yaml:"enabled" env:"HOUSEKEEPER_EXPIRY_ENABLED"`
	Schedule    string `yaml:"schedule" env:"HOUSEKEEPER_EXPIRY_SCHEDULE"`
	TimeoutMs   int64  `yaml:"timeoutMs" env:"HOUSEKEEPER_EXPIRY_TIMEOUT_MS"`
	Parallelism int    `yaml:"parallelism" env:"HOUSEKEEPER_EXPIRY_PARALLELISM"`
	BatchSize   int    `yaml:"batchSize" env:"HOUSEKEEPER_EXPIRY_BATCH_SIZE"`
}

type StorageJobConfig struct {
	Enabled            bool   `yaml:"enabled" env:"HOUSEKEEPER_STORAGE_ENABLED"`
	Schedule           string `yaml:"schedule" env:"HOUSEKEEPER_STORAGE_SCHEDULE"`
	TimeoutMs          int64  `yaml:"timeoutMs" env:"HOUSEKEEPER_STORAGE_TIMEOUT_MS"`
	Prefix             string `yaml:"prefix" env:"HOUSEKEEPER_STORAGE_PREFIX"`
	WarnThresholdBytes int64  `yaml:"warnThresholdBytes" env:"HOUSEKEEPER_STORAGE_WARN_THRESHOLD_BYTES"`
}

type ServerConfig struct {
	ListenAddr         string `yaml:"listenAddr" env:"HOUSEKEEPER_LISTEN_ADDR"`
	ShutdownTimeoutMs  int64  `yaml:"shutdownTimeoutMs" env:"HOUSEKEEPER_SHUTDOWN_TIMEOUT_MS"`
	ReadinessTimeoutMs int64  `yaml:"readinessTimeoutMs" env:"HOUSEKEEPER_READINESS_TIMEOUT_MS"`
}

type ObservabilityConfig struct {
	LogLevel  string `yaml:"logLevel" env:"HOUSEKEEPER_LOG_LEVEL"`
	LogFormat string `yaml:"logFormat" env:"HOUSEKEEPER_LOG_FORMAT"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Backend:       DatabaseFirestore,
			OxiaEndpoint:  "localhost:6648",
			OxiaNamespace: "default",
			KeyRoot:       "/housekeeper/v1/docs",
		},
		ObjectStore: ObjectStoreConfig{
			Backend: ObjectStoreGCS,
			Region:  "us-east-1",
		},
		Jobs: JobsConfig{
			Timezone: "Asia/Bangkok",
			Expiry: ExpiryJobConfig{
				Enabled:     true,
				Schedule:    "0 3 * * *",
				TimeoutMs:   540000, // 9 minutes
				Parallelism: 1,
				BatchSize:   500,
			},
			Storage: StorageJobConfig{
				Enabled:            true,
				Schedule:           "0 0 * * *",
				TimeoutMs:          540000,
				Prefix:             "live_streams/",
				WarnThresholdBytes: 4831838208, // 4.5 GiB
			},
		},
		Server: ServerConfig{
			ListenAddr:         ":8080",
			ShutdownTimeoutMs:  30000,
			ReadinessTimeoutMs: 5000,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

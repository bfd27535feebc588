package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBatchSize      = 20
	DefaultPlaceholderURL = "https://placehold.co/800x600?text=Image+Coming+Soon"
	DefaultFallbackAgent  = "00000000-0000-0000-0000-000000000001"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Drive     DriveConfig     `yaml:"drive"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Seeding   SeedingConfig   `yaml:"seeding"`
	Workers   WorkersConfig   `yaml:"workers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadMB     int64         `yaml:"max_upload_mb"`
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	PoolSize       int    `yaml:"pool_size"`
	IngestionQueue string `yaml:"ingestion_queue"`
	DLQSuffix      string `yaml:"dlq_suffix"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	KeyPrefix string `yaml:"key_prefix"`
}

type DriveConfig struct {
	// Empty means Application Default Credentials.
	CredentialsFile  string        `yaml:"credentials_file"`
	ImageURLTemplate string        `yaml:"image_url_template"`
	ListTimeout      time.Duration `yaml:"list_timeout"`
	PageSize         int64         `yaml:"page_size"`
	RetryAttempts    int           `yaml:"retry_attempts"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
}

type IngestionConfig struct {
	BatchSize        int           `yaml:"batch_size"`
	StoreTimeout     time.Duration `yaml:"store_timeout"`
	PlaceholderURL   string        `yaml:"placeholder_url"`
	FallbackAgentID  string        `yaml:"fallback_agent_id"`
	Amenities        []string      `yaml:"amenities"`
	OwnershipStatus  string        `yaml:"ownership_status"`
	PossessionStatus string        `yaml:"possession_status"`
}

type SeedingConfig struct {
	MaxPairsPerCity int   `yaml:"max_pairs_per_city"`
	RandomSeed      int64 `yaml:"random_seed"`
}

type WorkersConfig struct {
	Ingestion IngestionWorkerConfig `yaml:"ingestion"`
}

type IngestionWorkerConfig struct {
	Count int `yaml:"count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	// .env is optional; variables may already be set in the shell.
	_ = godotenv.Load(".env")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	return LoadFile(configPath)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references from the environment before decoding.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns a configuration with every default applied and nothing
// read from disk.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Ingestion.BatchSize <= 0 {
		c.Ingestion.BatchSize = DefaultBatchSize
	}
	if c.Ingestion.StoreTimeout <= 0 {
		c.Ingestion.StoreTimeout = 30 * time.Second
	}
	if c.Ingestion.PlaceholderURL == "" {
		c.Ingestion.PlaceholderURL = DefaultPlaceholderURL
	}
	if c.Ingestion.FallbackAgentID == "" {
		c.Ingestion.FallbackAgentID = DefaultFallbackAgent
	}
	if len(c.Ingestion.Amenities) == 0 {
		c.Ingestion.Amenities = []string{"Power Backup", "Lift", "Security", "Car Parking", "Water Supply"}
	}
	if c.Ingestion.OwnershipStatus == "" {
		c.Ingestion.OwnershipStatus = "Freehold"
	}
	if c.Ingestion.PossessionStatus == "" {
		c.Ingestion.PossessionStatus = "Ready to Move"
	}
	if c.Drive.ImageURLTemplate == "" {
		c.Drive.ImageURLTemplate = "https://drive.google.com/uc?export=view&id=%s"
	}
	if c.Drive.ListTimeout <= 0 {
		c.Drive.ListTimeout = 60 * time.Second
	}
	if c.Drive.PageSize <= 0 {
		c.Drive.PageSize = 200
	}
	if c.Drive.RetryAttempts <= 0 {
		c.Drive.RetryAttempts = 5
	}
	if c.Drive.RetryDelay <= 0 {
		c.Drive.RetryDelay = 500 * time.Millisecond
	}
	if c.Seeding.MaxPairsPerCity <= 0 {
		c.Seeding.MaxPairsPerCity = 2
	}
	if c.Workers.Ingestion.Count <= 0 {
		c.Workers.Ingestion.Count = 2
	}
	if c.Redis.IngestionQueue == "" {
		c.Redis.IngestionQueue = "property_ingest:jobs"
	}
	if c.Redis.DLQSuffix == "" {
		c.Redis.DLQSuffix = ":dlq"
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 20
	}
}

func (c *Config) Validate() error {
	if c.Ingestion.BatchSize > 1000 {
		return fmt.Errorf("ingestion.batch_size must be at most 1000, got %d", c.Ingestion.BatchSize)
	}
	if c.Seeding.MaxPairsPerCity > 50 {
		return fmt.Errorf("seeding.max_pairs_per_city must be at most 50, got %d", c.Seeding.MaxPairsPerCity)
	}
	return nil
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
//
// clientFoundRows makes UPDATE report matched rather than changed rows, so
// an update that writes identical values still counts as found.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s&clientFoundRows=true",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

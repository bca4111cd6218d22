package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Logging  LoggingConfig  `yaml:"logging"`
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
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"pool_size"`
	ListTTL  time.Duration `yaml:"list_ttl"`
}

type StorageConfig struct {
	// Mode selects where uploaded files are staged before parsing:
	// "s3" uploads to the bucket and fetches back, "memory" keeps the
	// request buffer in process.
	Mode string   `yaml:"mode"`
	S3   S3Config `yaml:"s3"`
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

type IngestConfig struct {
	// Atomic switches the dedup engine to storage-level conditional
	// inserts, closing the lookup-then-insert window between concurrent
	// uploads of the same file.
	Atomic bool `yaml:"atomic"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	config := defaults()

	configPath := os.Getenv("CONFIG_PATH")
	explicit := configPath != ""
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// No file; run on defaults plus environment.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.applyEnv()

	if config.Database.Host == "" || config.Database.Name == "" {
		return nil, fmt.Errorf("database address is not configured (set database.host/database.name or DB_HOST/DB_NAME)")
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{Name: "finderhub", Version: "dev", Env: "development"},
		Server: ServerConfig{
			Port:            3001,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Port:               3306,
			User:               "root",
			Charset:            "utf8mb4",
			ParseTime:          true,
			Loc:                "UTC",
			MaxConnections:     10,
			MaxIdleConnections: 5,
			ConnectionLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Port:     6379,
			PoolSize: 10,
			ListTTL:  time.Minute,
		},
		Storage: StorageConfig{
			Mode: "memory",
			S3:   S3Config{Region: "us-east-1", UseSSL: true, KeyPrefix: "uploads"},
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// applyEnv layers the environment contract over the file values. Secrets
// and deploy-time addresses usually arrive this way.
func (c *Config) applyEnv() {
	envInt(&c.Server.Port, "PORT")
	envString(&c.Database.Host, "DB_HOST")
	envInt(&c.Database.Port, "DB_PORT")
	envString(&c.Database.User, "DB_USER")
	envString(&c.Database.Password, "DB_PASSWORD")
	envString(&c.Database.Name, "DB_NAME")
	envString(&c.Storage.S3.AccessKey, "AWS_ACCESS_KEY_ID")
	envString(&c.Storage.S3.SecretKey, "AWS_SECRET_ACCESS_KEY")
	envString(&c.Storage.S3.Region, "AWS_REGION")
	envString(&c.Storage.S3.Bucket, "S3_BUCKET")
	envString(&c.Storage.Mode, "STORAGE_MODE")
	envString(&c.Redis.Host, "REDIS_HOST")
	envInt(&c.Redis.Port, "REDIS_PORT")
	envString(&c.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Enabled = true
	}
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

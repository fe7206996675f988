package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Runtime values
const (
	RuntimeLocal = "local"
)

// Storage drivers
const (
	StorageDriverPostgres      = "postgres"
	StorageDriverElasticsearch = "elasticsearch"
	StorageDriverMemory        = "memory"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Elastic   ElasticConfig
	Memory    MemoryConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	Runtime      string
	ServiceAlias string
	CORSOrigins  string
}

type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	Schema          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type ElasticConfig struct {
	URLs  []string
	Index string
	Sniff bool
}

type MemoryConfig struct {
	SeedFile string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled        bool
	SearchCacheTTL time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type LogConfig struct {
	Level string
}

type TelemetryConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	MaxRetries    int
}

// Load читает конфигурацию из .env (если файл есть) и переменных окружения
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if _, err := os.Stat(".env"); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	setDefaults()

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("API_HOST"),
			Port:         viper.GetInt("API_PORT"),
			Env:          viper.GetString("API_ENV"),
			Runtime:      viper.GetString("RUNTIME"),
			ServiceAlias: viper.GetString("SERVICE_ALIAS"),
			CORSOrigins:  viper.GetString("CORS_ORIGINS"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			Schema:          viper.GetString("DB_SCHEMA"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Elastic: ElasticConfig{
			URLs:  splitList(viper.GetString("ELASTIC_URL")),
			Index: viper.GetString("ELASTIC_INDEX"),
			Sniff: viper.GetBool("ELASTIC_SNIFF"),
		},
		Memory: MemoryConfig{
			SeedFile: viper.GetString("MEMORY_SEED_FILE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			Enabled:        viper.GetBool("CACHE_ENABLED"),
			SearchCacheTTL: time.Duration(viper.GetInt("SEARCH_CACHE_TTL")) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("AUTH_JWT_SECRET"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Telemetry: TelemetryConfig{
			Enabled:     viper.GetBool("TELEMETRY_ENABLED"),
			ServiceName: viper.GetString("SERVICE_ALIAS"),
			Endpoint:    viper.GetString("TELEMETRY_ENDPOINT"),
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup: viper.GetString("WORKER_CONSUMER_GROUP"),
			MaxRetries:    viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("API_HOST", "0.0.0.0")
	viper.SetDefault("API_PORT", 3000)
	viper.SetDefault("API_ENV", "development")
	viper.SetDefault("RUNTIME", RuntimeLocal)
	viper.SetDefault("SERVICE_ALIAS", "land-registry-map")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SCHEMA", "rg_service_map")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	viper.SetDefault("ELASTIC_URL", "http://localhost:9200")
	viper.SetDefault("ELASTIC_INDEX", "land_registry_title")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("CACHE_ENABLED", true)
	viper.SetDefault("SEARCH_CACHE_TTL", 300)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TELEMETRY_ENDPOINT", "localhost:4317")
	viper.SetDefault("WORKER_CONSUMER_GROUP", "land-registry-title-sync")
	viper.SetDefault("WORKER_MAX_RETRIES", 3)
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverElasticsearch, StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if !c.IsLocal() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required when RUNTIME is not %q", RuntimeLocal)
	}

	return nil
}

// IsLocal - локальный запуск, проверка сессии отключена
func (c *Config) IsLocal() bool {
	return c.Server.Runtime == RuntimeLocal
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DSN - строка подключения для драйвера pgx
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

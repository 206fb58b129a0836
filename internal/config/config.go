// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Engine   EngineConfig
	Export   ExportConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

// EngineConfig holds tunables for the usage analytics engine. The forecast
// weights and smoothing alpha default to the values the original dashboards
// shipped with; they are configurable rather than hard-coded.
type EngineConfig struct {
	SMAWeight          float64
	SmoothingWeight    float64
	TrendWeight        float64
	SmoothingAlpha     float64
	SMAWindowDays      int
	DefaultHorizonDays int
	DefaultLeadTime    int
	MaxWindowDays      int
	BatchWorkers       int
}

// ExportConfig holds the S3-compatible archive settings for report exports.
type ExportConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	LocalDir  string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "restoops")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 300)
		viper.SetDefault("ENGINE_SMA_WEIGHT", 0.4)
		viper.SetDefault("ENGINE_SMOOTHING_WEIGHT", 0.3)
		viper.SetDefault("ENGINE_TREND_WEIGHT", 0.3)
		viper.SetDefault("ENGINE_SMOOTHING_ALPHA", 0.3)
		viper.SetDefault("ENGINE_SMA_WINDOW_DAYS", 7)
		viper.SetDefault("ENGINE_DEFAULT_HORIZON_DAYS", 30)
		viper.SetDefault("ENGINE_DEFAULT_LEAD_TIME_DAYS", 7)
		viper.SetDefault("ENGINE_MAX_WINDOW_DAYS", 365)
		viper.SetDefault("ENGINE_BATCH_WORKERS", 4)
		viper.SetDefault("EXPORT_ENABLED", false)
		viper.SetDefault("EXPORT_S3_ENDPOINT", "")
		viper.SetDefault("EXPORT_S3_ACCESS_KEY", "")
		viper.SetDefault("EXPORT_S3_SECRET_KEY", "")
		viper.SetDefault("EXPORT_S3_BUCKET", "")
		viper.SetDefault("EXPORT_S3_REGION", "")
		viper.SetDefault("EXPORT_S3_USE_SSL", true)
		viper.SetDefault("EXPORT_LOCAL_DIR", "./data/exports")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
			Engine: EngineConfig{
				SMAWeight:          viper.GetFloat64("ENGINE_SMA_WEIGHT"),
				SmoothingWeight:    viper.GetFloat64("ENGINE_SMOOTHING_WEIGHT"),
				TrendWeight:        viper.GetFloat64("ENGINE_TREND_WEIGHT"),
				SmoothingAlpha:     viper.GetFloat64("ENGINE_SMOOTHING_ALPHA"),
				SMAWindowDays:      viper.GetInt("ENGINE_SMA_WINDOW_DAYS"),
				DefaultHorizonDays: viper.GetInt("ENGINE_DEFAULT_HORIZON_DAYS"),
				DefaultLeadTime:    viper.GetInt("ENGINE_DEFAULT_LEAD_TIME_DAYS"),
				MaxWindowDays:      viper.GetInt("ENGINE_MAX_WINDOW_DAYS"),
				BatchWorkers:       viper.GetInt("ENGINE_BATCH_WORKERS"),
			},
			Export: ExportConfig{
				Enabled:   viper.GetBool("EXPORT_ENABLED"),
				Endpoint:  viper.GetString("EXPORT_S3_ENDPOINT"),
				AccessKey: viper.GetString("EXPORT_S3_ACCESS_KEY"),
				SecretKey: viper.GetString("EXPORT_S3_SECRET_KEY"),
				Bucket:    viper.GetString("EXPORT_S3_BUCKET"),
				Region:    viper.GetString("EXPORT_S3_REGION"),
				UseSSL:    viper.GetBool("EXPORT_S3_USE_SSL"),
				LocalDir:  viper.GetString("EXPORT_LOCAL_DIR"),
			},
		}
	})

	return instance
}

package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Engine   EngineConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type JWTConfig struct {
	SecretKey string
}

// EngineConfig tunes the analysis pipeline. Defaults match the
// documented engine behavior; override per deployment via env.
type EngineConfig struct {
	BehaviorLookbackDays    int
	LifecycleLookbackMonths int
	HealthLookbackDays      int
	ProductSampleLimit      int
	AnalysisWorkers         int
	CatalogCacheTTLSeconds  int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Mercadolens Intelligence API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "mercadolens"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Engine: EngineConfig{
			BehaviorLookbackDays:    getEnvInt("ENGINE_BEHAVIOR_LOOKBACK_DAYS", 30),
			LifecycleLookbackMonths: getEnvInt("ENGINE_LIFECYCLE_LOOKBACK_MONTHS", 6),
			HealthLookbackDays:      getEnvInt("ENGINE_HEALTH_LOOKBACK_DAYS", 30),
			ProductSampleLimit:      getEnvInt("ENGINE_PRODUCT_SAMPLE_LIMIT", 100),
			AnalysisWorkers:         getEnvInt("ENGINE_ANALYSIS_WORKERS", 8),
			CatalogCacheTTLSeconds:  getEnvInt("ENGINE_CATALOG_CACHE_TTL_SECONDS", 60),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return n
}

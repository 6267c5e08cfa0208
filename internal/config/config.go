package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Auth     AuthConfig
	Geo      GeoConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TrustedProxies []string
}

type AuthConfig struct {
	JWTSecret        string
	SessionTTL       time.Duration
	RSAPrivateKey    []byte
	MaxLoginFailures int
	FailureWindow    time.Duration
	LockoutDuration  time.Duration
	ChallengeTTL     time.Duration
}

type GeoConfig struct {
	MMDBPath string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(jwtSecret) < 16 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 16 characters (got %d)", len(jwtSecret))
	}

	rsaKey, err := loadRSAPrivateKey()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "eu_admin"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES"),
		},
		Auth: AuthConfig{
			JWTSecret:        jwtSecret,
			SessionTTL:       getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			RSAPrivateKey:    rsaKey,
			MaxLoginFailures: getEnvAsInt("MAX_LOGIN_FAILURES", 5),
			FailureWindow:    getEnvAsDuration("LOGIN_FAILURE_WINDOW", 10*time.Minute),
			LockoutDuration:  getEnvAsDuration("LOGIN_LOCKOUT_DURATION", 30*time.Minute),
			ChallengeTTL:     getEnvAsDuration("LOGIN_CHALLENGE_TTL", 5*time.Minute),
		},
		Geo: GeoConfig{
			MMDBPath: getEnv("GEOIP_MMDB_PATH", ""),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Auth.MaxLoginFailures < 1 {
		return nil, fmt.Errorf("MAX_LOGIN_FAILURES must be at least 1")
	}

	return cfg, nil
}

// loadRSAPrivateKey reads the login-password decryption key either inline from
// RSA_PRIVATE_KEY or from the file named by RSA_PRIVATE_KEY_FILE.
func loadRSAPrivateKey() ([]byte, error) {
	if inline := os.Getenv("RSA_PRIVATE_KEY"); inline != "" {
		return []byte(inline), nil
	}

	path := os.Getenv("RSA_PRIVATE_KEY_FILE")
	if path == "" {
		return nil, fmt.Errorf("RSA_PRIVATE_KEY or RSA_PRIVATE_KEY_FILE is required")
	}

	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read RSA private key file: %w", err)
	}
	return key, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

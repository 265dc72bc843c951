package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Firebase  FirebaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Log       LogConfig
	Geofence  GeofenceConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

type DatabaseConfig struct {
	Driver          string // mysql | postgres
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

// RedisConfig enables the active zone cache when Addr is set.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	ZoneCacheTTL time.Duration
}

// NATSConfig enables geofence event publishing when URL is set.
type NATSConfig struct {
	URL            string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

type LogConfig struct {
	Level      string // debug | info | warn | error
	Format     string // text | json
	File       string // empty logs to stderr only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type GeofenceConfig struct {
	AlertWindow         time.Duration
	AutoGenLookback     time.Duration
	AutoGenMinReports   int
	AutoGenMaxClusters  int
	AutoGenRadiusMeters float64
	DuplicateZoneMeters float64
	HistoryDefaultLimit int
	HistoryMaxLimit     int
	PushWorkers         int
	PushQueueSize       int
	PushTimeout         time.Duration
}

type RateLimitConfig struct {
	GlobalPerMinute   int
	LocationPerMinute int
	LocationBurst     int
}

// Load reads configuration from the environment, after loading .env when present.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8099"),
			Env:             getEnv("APP_ENV", "development"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DATABASE_URL", "root:@tcp(localhost:3306)/crimewatch?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       getEnv("JWT_ISSUER", "crimewatch"),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", ""),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			ZoneCacheTTL: getEnvAsDuration("ZONE_CACHE_TTL", 5*time.Minute),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			SubjectPrefix:  getEnv("NATS_SUBJECT_PREFIX", "crimewatch"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 2*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 10),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
		},
		Geofence: GeofenceConfig{
			AlertWindow:         getEnvAsDuration("GEOFENCE_ALERT_WINDOW", 60*time.Minute),
			AutoGenLookback:     getEnvAsDuration("GEOFENCE_AUTOGEN_LOOKBACK", 90*24*time.Hour),
			AutoGenMinReports:   getEnvAsInt("GEOFENCE_AUTOGEN_MIN_REPORTS", 3),
			AutoGenMaxClusters:  getEnvAsInt("GEOFENCE_AUTOGEN_MAX_CLUSTERS", 20),
			AutoGenRadiusMeters: getEnvAsFloat("GEOFENCE_AUTOGEN_RADIUS_METERS", 500),
			DuplicateZoneMeters: getEnvAsFloat("GEOFENCE_DUPLICATE_ZONE_METERS", 500),
			HistoryDefaultLimit: getEnvAsInt("GEOFENCE_HISTORY_DEFAULT_LIMIT", 100),
			HistoryMaxLimit:     getEnvAsInt("GEOFENCE_HISTORY_MAX_LIMIT", 500),
			PushWorkers:         getEnvAsInt("PUSH_WORKERS", 4),
			PushQueueSize:       getEnvAsInt("PUSH_QUEUE_SIZE", 256),
			PushTimeout:         getEnvAsDuration("PUSH_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			GlobalPerMinute:   getEnvAsInt("RATE_LIMIT_GLOBAL_PER_MINUTE", 100),
			LocationPerMinute: getEnvAsInt("RATE_LIMIT_LOCATION_PER_MINUTE", 30),
			LocationBurst:     getEnvAsInt("RATE_LIMIT_LOCATION_BURST", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

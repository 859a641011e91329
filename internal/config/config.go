package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string

	Delivery DeliveryConfig
	Provider ProviderConfig
}

// DeliveryConfig is the pricing-engine configuration injected at
// construction time. Fees use the store currency's major unit.
type DeliveryConfig struct {
	DefaultBaseFee  float64
	DefaultPerKmFee float64

	SoftTTLMinutes int
	HardTTLMinutes int

	FallbackProvider string
	RoadFactor       float64

	OriginLat float64
	OriginLng float64
}

// ProviderConfig configures the primary distance lookup. An empty APIKey
// disables the primary provider and every quote uses the fallback.
type ProviderConfig struct {
	APIKey         string
	Endpoint       string
	TimeoutSeconds int
}

func (d DeliveryConfig) SoftTTL() time.Duration {
	return time.Duration(d.SoftTTLMinutes) * time.Minute
}

func (d DeliveryConfig) HardTTL() time.Duration {
	return time.Duration(d.HardTTLMinutes) * time.Minute
}

func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "courierfare"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "courierfare"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),

		Delivery: DeliveryConfig{
			DefaultBaseFee:   getenvFloat("DELIVERY_BASE_FEE", 0),
			DefaultPerKmFee:  getenvFloat("DELIVERY_PER_KM_RATE", 0),
			SoftTTLMinutes:   getenvInt("DELIVERY_CACHE_SOFT_TTL_MINUTES", 180),
			HardTTLMinutes:   getenvInt("DELIVERY_CACHE_TTL_MINUTES", 1440),
			FallbackProvider: getenv("DELIVERY_DISTANCE_FALLBACK_PROVIDER", "haversine"),
			RoadFactor:       getenvFloat("DELIVERY_ROAD_FACTOR", 1.3),
			OriginLat:        getenvFloat("BUSINESS_LATITUDE", 0),
			OriginLng:        getenvFloat("BUSINESS_LONGITUDE", 0),
		},
		Provider: ProviderConfig{
			APIKey:         strings.TrimSpace(getenv("GOOGLE_MAPS_API_KEY", "")),
			Endpoint:       getenv("GOOGLE_DISTANCE_MATRIX_ENDPOINT", "https://maps.googleapis.com/maps/api/distancematrix/json"),
			TimeoutSeconds: getenvInt("GOOGLE_DISTANCE_MATRIX_TIMEOUT", 5),
		},
	}

	if cfg.Delivery.SoftTTLMinutes > cfg.Delivery.HardTTLMinutes {
		cfg.Delivery.SoftTTLMinutes = cfg.Delivery.HardTTLMinutes
	}
	if cfg.Delivery.RoadFactor < 1 {
		cfg.Delivery.RoadFactor = 1
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

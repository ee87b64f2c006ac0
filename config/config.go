package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/logger"
	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	JWTSecret         string
	StoreDriver       string
	MongoTransactions bool
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	CacheTTL          time.Duration
	KafkaBrokers      []string
	KafkaTopic        string
	OpenFDAURL        string
	UpstreamTimeout   time.Duration
	ReconcileSchedule string
}

/*
* Load the .env file when there is one
* Every value falls back to a default
* An empty REDIS_ADDR or KAFKA_BROKERS turns that integration off
 */
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file loaded, using the process environment")
	}
	return &Config{
		JWTSecret:         getEnv("JWT_SECRET", "change-me"),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoTransactions: getBool("MONGO_TRANSACTIONS", false),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getInt("REDIS_DB", 0),
		CacheTTL:          getDuration("CACHE_TTL", 10*time.Minute),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "medshare-events"),
		OpenFDAURL:        getEnv("OPENFDA_URL", "https://api.fda.gov/drug/drugsfda.json"),
		UpstreamTimeout:   getDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 15m"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultVal)))
	if err != nil {
		logger.Warningf("Invalid %s, using %t", key, defaultVal)
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultVal)))
	if err != nil {
		logger.Warningf("Invalid %s, using %d", key, defaultVal)
		return defaultVal
	}
	return v
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, defaultVal.String()))
	if err != nil {
		logger.Warningf("Invalid %s, using %s", key, defaultVal)
		return defaultVal
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

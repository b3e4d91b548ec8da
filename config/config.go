package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	LogLevel  string
	LogFormat string

	ServerPort  string
	DatabaseDSN string
	BaseURL     string
	JWTSecret   string
	TokenTTL    time.Duration

	MediaRoot     string
	MediaBaseURL  string
	MediaMaxWidth int
	CloudinaryUrl string

	KavenegarAPIKey   string
	KavenegarTemplate string
	OTPRateLimit      int
	OTPRateWindow     time.Duration
	RedisURL          string

	KafkaBroker   string
	KafkaTopic    string
	KafkaGroupID  string
	KafkaUsername string
	KafkaPassword string

	BootstrapAdminPhone string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		Env:       getEnv("ENV", "dev"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		ServerPort:  getEnv("SERVER_PORT", ":3000"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		BaseURL:     getEnv("BASE_URL", "*"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    getDuration("TOKEN_TTL", 24*time.Hour),

		MediaRoot:     getEnv("MEDIA_ROOT", "./media"),
		MediaBaseURL:  strings.TrimRight(getEnv("MEDIA_BASE_URL", "/media"), "/"),
		MediaMaxWidth: getInt("MEDIA_MAX_WIDTH", 1600),
		CloudinaryUrl: os.Getenv("CLOUDINARY_URL"),

		KavenegarAPIKey:   os.Getenv("KAVENEGAR_API_KEY"),
		KavenegarTemplate: getEnv("KAVENEGAR_OTP_TEMPLATE", "verify"),
		OTPRateLimit:      getInt("OTP_RATE_LIMIT", 5),
		OTPRateWindow:     getDuration("OTP_RATE_WINDOW", 10*time.Minute),
		RedisURL:          os.Getenv("REDIS_URL"),

		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "logistics.events"),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "logistics-audit"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),

		BootstrapAdminPhone: os.Getenv("BOOTSTRAP_ADMIN_PHONE"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

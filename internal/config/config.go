// Package config reads service settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

// Config holds every runtime setting.
type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	LogFormat string

	Store    string
	MongoURI string
	MongoDB  string

	JWTSecret string
	JWTExpiry time.Duration

	CORSOrigins       []string
	TrustProxy        bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	Cashfree Cashfree
	Notify   Notify
	Booking  Booking

	AdminEmail    string
	AdminPassword string
}

type Cashfree struct {
	AppID         string
	SecretKey     string
	Env           string
	APIVersion    string
	Timeout       time.Duration
	WebhookSecret string
}

type Notify struct {
	Driver          string
	Timeout         time.Duration
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
	KafkaBrokers    []string
	KafkaTopic      string
	BrevoAPIKey     string
	BrevoSender     string
	BrevoSenderName string
	AdminEmail      string
}

type Booking struct {
	Lock          string
	LockTTL       time.Duration
	LockWait      time.Duration
	SweepInterval time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := getEnv("CASHFREE_SECRET_KEY", "")
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		Store:    strings.ToLower(getEnv("STORE", "mongo")),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "scooter_rental"),

		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),

		CORSOrigins: getList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		TrustProxy:  getBool("TRUST_PROXY", false),

		Cashfree: Cashfree{
			AppID:         getEnv("CASHFREE_APP_ID", ""),
			SecretKey:     secret,
			Env:           strings.ToLower(getEnv("CASHFREE_ENV", "sandbox")),
			APIVersion:    getEnv("CASHFREE_API_VERSION", "2023-08-01"),
			WebhookSecret: getEnv("CASHFREE_WEBHOOK_SECRET", secret),
		},
		Notify: Notify{
			Driver:          strings.ToLower(getEnv("NOTIFY_DRIVER", "log")),
			MQTTBroker:      getEnv("MQTT_BROKER", ""),
			MQTTClientID:    getEnv("MQTT_CLIENT_ID", "scooter-rental-api"),
			MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "scooter-rental"),
			KafkaBrokers:    getList("KAFKA_BROKERS", nil),
			KafkaTopic:      getEnv("KAFKA_TOPIC", "rental-events"),
			BrevoAPIKey:     getEnv("BREVO_API_KEY", ""),
			BrevoSender:     getEnv("BREVO_SENDER_EMAIL", ""),
			BrevoSenderName: getEnv("BREVO_SENDER_NAME", "Scooter Rental"),
			AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		},
		Booking: Booking{
			Lock: strings.ToLower(getEnv("BOOKING_LOCK", "")),
		},

		AdminEmail:    getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if cfg.Booking.Lock == "" {
		cfg.Booking.Lock = "local"
		if cfg.Store == "mongo" {
			cfg.Booking.Lock = "mongo"
		}
	}

	var err error
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitRequests, err = getInt("RATE_LIMIT_REQUESTS", 120); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.Cashfree.Timeout, err = getDuration("CASHFREE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Notify.Timeout, err = getDuration("NOTIFY_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Booking.LockTTL, err = getDuration("BOOKING_LOCK_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Booking.LockWait, err = getDuration("BOOKING_LOCK_WAIT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Booking.SweepInterval, err = getDuration("SWEEP_INTERVAL", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store {
	case "mongo", "memory":
	default:
		return fmt.Errorf("STORE must be mongo or memory, got %q", c.Store)
	}
	switch c.Notify.Driver {
	case "log", "mqtt", "kafka", "brevo", "none":
	default:
		return fmt.Errorf("NOTIFY_DRIVER must be log, mqtt, kafka, brevo or none, got %q", c.Notify.Driver)
	}
	switch c.Booking.Lock {
	case "mongo", "local":
	default:
		return fmt.Errorf("BOOKING_LOCK must be mongo or local, got %q", c.Booking.Lock)
	}
	if c.Booking.Lock == "mongo" && c.Store != "mongo" {
		return fmt.Errorf("BOOKING_LOCK=mongo requires STORE=mongo")
	}
	switch c.Cashfree.Env {
	case "sandbox", "production":
	default:
		return fmt.Errorf("CASHFREE_ENV must be sandbox or production, got %q", c.Cashfree.Env)
	}
	if c.Notify.Driver == "mqtt" && c.Notify.MQTTBroker == "" {
		return fmt.Errorf("NOTIFY_DRIVER=mqtt requires MQTT_BROKER")
	}
	if c.Notify.Driver == "kafka" && len(c.Notify.KafkaBrokers) == 0 {
		return fmt.Errorf("NOTIFY_DRIVER=kafka requires KAFKA_BROKERS")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Cashfree.SecretKey == "" || c.Cashfree.WebhookSecret == "" {
			return fmt.Errorf("CASHFREE_SECRET_KEY must be set in production")
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getList(key string, fallback []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

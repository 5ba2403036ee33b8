package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the keyword/value connection string for the postgres driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL renders the URL form used by the migration tooling.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// JWTConfig holds token-signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// StripeConfig holds Stripe-specific configuration.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// VenueConfig holds booking business settings: the same-day cutoff time
// ("HH:mm", venue wall clock) and the deposit percentage charged at
// booking time.
type VenueConfig struct {
	CutoffTime     string
	DepositPercent float64
	Currency       string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	DBConfig     DatabaseConfig
	JWTConfig    JWTConfig
	KafkaConfig  KafkaConfig
	StripeConfig StripeConfig
	VenueConfig  VenueConfig
}

// Load reads configuration from environment variables and returns a
// ServiceConfig with sensible development defaults.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "venue_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "ncb-")
	v.SetDefault("BOOKING_CUTOFF_TIME", "12:00")
	v.SetDefault("BOOKING_DEPOSIT_PERCENT", 25.0)
	v.SetDefault("BOOKING_CURRENCY", "GBP")

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" {
		if v.GetString("APP_ENV") != "development" {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		jwtSecret = "dev-only-secret"
	}

	return &ServiceConfig{
		Port:   ":" + v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{Secret: jwtSecret},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		StripeConfig: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		},
		VenueConfig: VenueConfig{
			CutoffTime:     v.GetString("BOOKING_CUTOFF_TIME"),
			DepositPercent: v.GetFloat64("BOOKING_DEPOSIT_PERCENT"),
			Currency:       v.GetString("BOOKING_CURRENCY"),
		},
	}, nil
}

package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the API reads from the environment.
// Values come from the process environment (a .env file is loaded in
// main before this runs).
type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	JWTSecret string

	AdminEmail    string
	AdminPassword string

	// Static key guarding the service-to-service price-list routes.
	PriceListAPIKey string

	// Optional catalogue cache. Disabled when empty.
	RedisAddr string

	// Optional price-list sync consumer. Disabled when no brokers set.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	StripeKey string
	Currency  string

	// Gateway orders left unpaid longer than this get swept.
	UnpaidOrderTTL time.Duration
}

// Load reads the configuration from the environment, applying defaults
// for everything that is safe to default.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "4000")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_NAME", "storefront")
	v.SetDefault("KAFKA_TOPIC", "pricelist-sync")
	v.SetDefault("KAFKA_GROUP_ID", "storefront-pricelist-sync")
	v.SetDefault("CURRENCY", "sgd")
	v.SetDefault("UNPAID_ORDER_TTL", "24h")

	ttl, err := time.ParseDuration(v.GetString("UNPAID_ORDER_TTL"))
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := v.GetString("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return &Config{
		Port:            v.GetString("PORT"),
		MongoURI:        v.GetString("MONGODB_URI"),
		MongoDB:         v.GetString("MONGODB_NAME"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		PriceListAPIKey: v.GetString("PRICE_LIST_API_KEY"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		KafkaBrokers:    brokers,
		KafkaTopic:      v.GetString("KAFKA_TOPIC"),
		KafkaGroupID:    v.GetString("KAFKA_GROUP_ID"),
		StripeKey:       v.GetString("STRIPE_SECRET_KEY"),
		Currency:        v.GetString("CURRENCY"),
		UnpaidOrderTTL:  ttl,
	}, nil
}

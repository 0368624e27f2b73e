package configs

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// LoadEnv reads the optional .env file. Missing files are fine in
// containerized deployments where everything arrives via the environment.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, relying on process environment")
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func EnvMongoURI() string {
	return getEnv("MONGOURI", "mongodb://localhost:27017")
}

func EnvDBName() string {
	return getEnv("DB_NAME", "krushiSarjana")
}

func EnvPort() string {
	return getEnv("PORT", "5000")
}

func EnvJWTSecret() string {
	return getEnv("JWT_SECRET", "")
}

func EnvStripeSecretKey() string {
	return getEnv("STRIPE_SECRET_KEY", "")
}

func EnvStripeWebhookSecret() string {
	return getEnv("STRIPE_WEBHOOK_SECRET", "")
}

func EnvClientURL() string {
	return getEnv("CLIENT_URL", "http://localhost:3000")
}

func EnvCurrency() string {
	return getEnv("CURRENCY", "inr")
}

// EnvRabbitMQURL returns "" when event publishing is disabled.
func EnvRabbitMQURL() string {
	return getEnv("RABBITMQ_URL", "")
}

package config

import "os"

// Config holds everything the API needs from the environment. Values come
// from real env vars or a .env file loaded by the caller via godotenv.
type Config struct {
	Addr                string
	DatabaseURL         string
	JWTSecret           string
	StripeSecretKey     string
	StripeWebhookSecret string
	SiteURL             string
	RedisAddr           string
	RedisPassword       string
	Env                 string
	LogLevel            string
}

func Load() Config {
	return Config{
		Addr:                getenv("STOREFRONT_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		SiteURL:             getenv("SITE_URL", "http://localhost:5173"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		Env:                 getenv("APP_ENV", "development"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv              string
	Addr                string
	DbDsn               string
	JwtSecret           string
	JwtAccessMinutes    int
	JwtRefreshHours     int
	OtpMinutes          int
	OtpRequestPerMinute int
	SmtpHost            string
	SmtpPort            int
	SmtpUser            string
	SmtpPass            string
	SmtpFrom            string
	StripeSecretKey     string
	StripeWebhookSecret string
	NatsURL             string
	AllowedOriginsRaw   string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:              getEnv("APP_ENV", "local"),
		Addr:                getEnv("APP_ADDR", ":8080"),
		DbDsn:               os.Getenv("DB_DSN"),
		JwtSecret:           os.Getenv("JWT_SECRET"),
		JwtAccessMinutes:    getEnvInt("JWT_ACCESS_MINUTES", 15),
		JwtRefreshHours:     getEnvInt("JWT_REFRESH_HOURS", 168),
		OtpMinutes:          getEnvInt("OTP_MINUTES", 10),
		OtpRequestPerMinute: getEnvInt("OTP_REQUEST_PER_MINUTE", 5),
		SmtpHost:            os.Getenv("SMTP_HOST"),
		SmtpPort:            getEnvInt("SMTP_PORT", 587),
		SmtpUser:            os.Getenv("SMTP_USER"),
		SmtpPass:            os.Getenv("SMTP_PASS"),
		SmtpFrom:            getEnv("SMTP_FROM", "no-reply@auctioncraft.local"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		NatsURL:             os.Getenv("NATS_URL"),
		AllowedOriginsRaw:   getEnv("ALLOWED_ORIGINS", ""),
	}

	missing := []string{}
	if cfg.DbDsn == "" {
		missing = append(missing, "DB_DSN")
	}
	if cfg.JwtSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}

	if len(missing) > 0 {
		return cfg, errors.New("missing env: " + strings.Join(missing, ", "))
	}

	return cfg, nil
}

// AllowedOrigins splits ALLOWED_ORIGINS into a clean list; empty means allow all.
func (c Config) AllowedOrigins() []string {
	origins := []string{}
	for _, origin := range strings.Split(c.AllowedOriginsRaw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

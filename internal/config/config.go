package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver   string // "postgres" or "sqlite"
	DBUrl      string
	DBMaxConns int32
	DBDebug    bool

	JWTSecret        string
	ExternalIDSecret string
	SessionTTL       time.Duration
	CookieSecure     bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string

	PostTitleMax   int
	PostContentMax int

	RedisAddr     string
	RedisPassword string
	NatsURL       string

	AWSBucket    string
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBUrl:      os.Getenv("DATABASE_URL"),
		DBMaxConns: int32(getInt("DB_MAX_CONNS", 10)),
		DBDebug:    getBool("DB_DEBUG", false),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		ExternalIDSecret: os.Getenv("EXTERNAL_ID_SECRET"),
		SessionTTL:       time.Duration(getInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieSecure:     getBool("COOKIE_SECURE", false),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),

		PostTitleMax:   getInt("POST_TITLE_MAX", 100),
		PostContentMax: getInt("POST_CONTENT_MAX", 1000),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		NatsURL:       os.Getenv("NATS_URL"),

		AWSBucket:    os.Getenv("AWS_BUCKET_NAME"),
		AWSRegion:    os.Getenv("AWS_REGION"),
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DBUrl == "" {
		errs = append(errs, errors.New("DATABASE_URL manquant"))
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		errs = append(errs, errors.New("DB_DRIVER doit valoir postgres ou sqlite"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET manquant"))
	}
	if c.ExternalIDSecret == "" {
		errs = append(errs, errors.New("EXTERNAL_ID_SECRET manquant"))
	}
	if c.PostTitleMax <= 0 || c.PostContentMax <= 0 {
		errs = append(errs, errors.New("POST_TITLE_MAX et POST_CONTENT_MAX doivent être positifs"))
	}
	return errors.Join(errs...)
}

func (c *Config) S3Enabled() bool {
	return c.AWSBucket != "" && c.AWSRegion != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. It is refused in
// production.
const DefaultJWTSecret = "change_me"

var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set in production")

type Settings struct {
	Port     string
	Env      string
	Timezone string

	MongoURI string
	MongoDB  string

	JWTSecret     string
	JWTExpiration time.Duration

	CORSOrigins  []string
	MetricsAllow []string

	UploadDir string
	S3        S3Settings
	SMTP      SMTPSettings

	AlertEmail        string
	LowStockThreshold int
}

type S3Settings struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
	Secure    bool
}

// Enabled reports whether uploads go to object storage instead of disk.
func (s S3Settings) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

type SMTPSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s SMTPSettings) Enabled() bool {
	return s.Host != "" && s.From != ""
}

func (s *Settings) IsProduction() bool {
	return s.Env == "production"
}

// Validate rejects settings the server must not run with.
func (s *Settings) Validate() error {
	if s.IsProduction() && (s.JWTSecret == "" || s.JWTSecret == DefaultJWTSecret) {
		return ErrDefaultJWTSecret
	}
	return nil
}

func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", s.Timezone).Msg("falling back to UTC")
		return time.UTC
	}
	return loc
}

// Load reads .env (if present) and the process environment.
func Load() *Settings {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "1414")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "restaurant")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("S3_SECURE", true)
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("LOW_STOCK_THRESHOLD", 5)

	return &Settings{
		Port:     v.GetString("PORT"),
		Env:      v.GetString("APP_ENV"),
		Timezone: v.GetString("TIMEZONE"),

		MongoURI: v.GetString("MONGO_URI"),
		MongoDB:  v.GetString("MONGO_DB"),

		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTExpiration: time.Duration(v.GetInt("JWT_EXPIRATION_HOURS")) * time.Hour,

		CORSOrigins:  splitList(v.GetString("CORS_ORIGINS")),
		MetricsAllow: splitList(v.GetString("METRICS_ALLOW")),

		UploadDir: v.GetString("UPLOAD_DIR"),
		S3: S3Settings{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			PublicURL: v.GetString("S3_PUBLIC_URL"),
			Secure:    v.GetBool("S3_SECURE"),
		},
		SMTP: SMTPSettings{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},

		AlertEmail:        v.GetString("ALERT_EMAIL"),
		LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

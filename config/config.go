package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the API server reads from the environment
type Config struct {
	Port     string
	GinMode  string
	DBDriver string
	DBDSN    string

	JWTSecret []byte
	JWTExpire time.Duration

	Location *time.Location

	LogLevel  string
	LogFormat string

	CORSOrigin      string
	LoginRatePerMin int

	KafkaBrokers []string
	KafkaTopic   string
	RedisAddr    string
	RedisChannel string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "restaurant_pos.db")
	v.SetDefault("JWT_SECRET", "restaurant_pos_dev_secret")
	v.SetDefault("JWT_EXPIRE", "720h")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("LOGIN_RATE_PER_MIN", 20)
	v.SetDefault("KAFKA_TOPIC", "pos.orders")
	v.SetDefault("REDIS_CHANNEL", "pos:orders")
	v.SetDefault("ADMIN_NAME", "Administrator")
}

// Load reads .env (if present) and the process environment
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (Config, error) {
	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		Port:            v.GetString("PORT"),
		GinMode:         v.GetString("GIN_MODE"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:           v.GetString("DB_DSN"),
		JWTSecret:       []byte(v.GetString("JWT_SECRET")),
		JWTExpire:       v.GetDuration("JWT_EXPIRE"),
		Location:        loc,
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		CORSOrigin:      v.GetString("CORS_ORIGIN"),
		LoginRatePerMin: v.GetInt("LOGIN_RATE_PER_MIN"),
		KafkaBrokers:    splitCSV(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:      v.GetString("KAFKA_TOPIC"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisChannel:    v.GetString("REDIS_CHANNEL"),
		AdminName:       v.GetString("ADMIN_NAME"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
	}, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

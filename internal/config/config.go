package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string
	GinMode  string
	LogLevel string

	// Database. Driver is one of sqlite / mysql / postgres. For sqlite the
	// DSN is the database file path.
	DBDriver   string
	DBDSN      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret   string
	TokenExpiry time.Duration

	FeedBaseURL      string
	FeedUID          string
	FeedCookie       string
	FeedUserAgent    string
	FeedReferer      string
	FeedCacheFile    string
	FeedInterval     time.Duration
	FeedFetchTimeout time.Duration
}

// Load reads configuration from environment variables with development
// defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "taskboard.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "taskuser")
	v.SetDefault("DB_PASSWORD", "taskpassword")
	v.SetDefault("DB_NAME", "taskboard")

	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_EXPIRE_MINUTES", 120)

	v.SetDefault("FEED_BASE_URL", "https://api.bilibili.com/x/polymer/web-dynamic/v1/feed/all")
	v.SetDefault("FEED_UID", "")
	v.SetDefault("FEED_COOKIE", "")
	v.SetDefault("FEED_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("FEED_REFERER", "https://www.bilibili.com/")
	v.SetDefault("FEED_CACHE_FILE", "feed-dynamics.json")
	v.SetDefault("FEED_REFRESH_INTERVAL", "10m")
	v.SetDefault("FEED_FETCH_TIMEOUT", "30s")

	return &Config{
		HTTPAddr: v.GetString("HTTP_ADDR"),
		GinMode:  v.GetString("GIN_MODE"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBDriver:   v.GetString("DB_DRIVER"),
		DBDSN:      v.GetString("DB_DSN"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),

		JWTSecret:   v.GetString("JWT_SECRET"),
		TokenExpiry: time.Duration(v.GetInt("JWT_EXPIRE_MINUTES")) * time.Minute,

		FeedBaseURL:      v.GetString("FEED_BASE_URL"),
		FeedUID:          v.GetString("FEED_UID"),
		FeedCookie:       v.GetString("FEED_COOKIE"),
		FeedUserAgent:    v.GetString("FEED_USER_AGENT"),
		FeedReferer:      v.GetString("FEED_REFERER"),
		FeedCacheFile:    v.GetString("FEED_CACHE_FILE"),
		FeedInterval:     v.GetDuration("FEED_REFRESH_INTERVAL"),
		FeedFetchTimeout: v.GetDuration("FEED_FETCH_TIMEOUT"),
	}
}

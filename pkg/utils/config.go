package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"artshop/pkg/database"
)

type ServerConfig struct {
	Addr        string
	TCPAddr     string // empty disables the TCP event feed
	DB          database.Config
	AssetsRoot  string
	TopicsFile  string
	ThumbCache  string
	SessionIdle time.Duration
	LogLevel    string
}

func LoadServerConfig() ServerConfig {
	cfg := ServerConfig{
		Addr:        envOr("ARTSHOP_ADDR", ":8080"),
		DB:          database.DefaultConfig(),
		AssetsRoot:  envOr("ARTSHOP_ASSETS_ROOT", "assets/static"),
		TopicsFile:  strings.TrimSpace(os.Getenv("ARTSHOP_TOPICS_FILE")),
		ThumbCache:  envOr("ARTSHOP_THUMB_CACHE", "cache/thumbs"),
		SessionIdle: 60 * time.Minute,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	// unset means default; explicitly empty means disabled
	if v, ok := os.LookupEnv("ARTSHOP_TCP_ADDR"); ok {
		cfg.TCPAddr = strings.TrimSpace(v)
	} else {
		cfg.TCPAddr = ":7070"
	}

	if raw := strings.TrimSpace(os.Getenv("ARTSHOP_SESSION_IDLE_MINUTES")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.SessionIdle = time.Duration(n) * time.Minute
		}
	}
	return cfg
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

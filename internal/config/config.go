package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DatabaseURL selects the backend once at startup: a non-empty value
	// means the remote Postgres store, otherwise the local SQLite store
	// under DataDir. There is no runtime fallback between the two.
	DatabaseURL string
	DataDir     string

	// PollInterval is the local backend's subscribeAll refresh cadence.
	PollInterval time.Duration

	AdminEmail    string
	AdminPassHash string // bcrypt; empty disables the password check
	AuthSecret    string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

// Online reports whether remote credentials are configured.
func (c Config) Online() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

func FromEnv() Config {
	return Config{
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DataDir:            envOr("DATA_DIR", "./data"),
		PollInterval:       envDuration("POLL_INTERVAL", 2*time.Second),
		AdminEmail:         envOr("ADMIN_EMAIL", "mcimarcommteam@gmail.com"),
		AdminPassHash:      os.Getenv("ADMIN_PASS_HASH"),
		AuthSecret:         envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://course.mciskills.com"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	// Backend endpoints
	APIBaseURL     string // REST backend, e.g. http://localhost:5000/api/
	GatewayURL     string // storage gateway serving /storage/download/:filename
	TranslationURL string // translation microservice
	Timeout        time.Duration
	// Session persistence
	SessionBackend  string // "file" or "redis"
	Home            string // directory holding session.yaml and logs
	RedisURL        string
	DepartmentScope string // "all" or "primary"
	// Views
	PageSize int
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	home := getEnv("ARKIVE_HOME", defaultHome())

	return &Config{
		Environment:     env,
		APIBaseURL:      getEnv("ARKIVE_API_URL", "http://localhost:5000/api/"),
		GatewayURL:      getEnv("ARKIVE_GATEWAY_URL", "http://localhost:8000"),
		TranslationURL:  getEnv("ARKIVE_TRANSLATION_URL", "http://localhost:8003/api"),
		Timeout:         time.Duration(getEnvInt("ARKIVE_TIMEOUT_SECONDS", 30)) * time.Second,
		SessionBackend:  strings.ToLower(getEnv("ARKIVE_SESSION_BACKEND", "file")),
		Home:            home,
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DepartmentScope: strings.ToLower(getEnv("ARKIVE_DEPARTMENT_SCOPE", "all")),
		PageSize:        getEnvInt("ARKIVE_PAGE_SIZE", 10),
		LogDir:          getEnv("LOG_DIR", filepath.Join(home, "logs")),
		LogMaxFiles:     getEnvInt("LOG_MAX_FILES", 10),
		// Console debug output is opt-in; the log file always records debug
		Debug: getEnv("DEBUG", "false") == "true",
	}
}

// SessionFile is the path of the file-backed session store.
func (c *Config) SessionFile() string {
	return filepath.Join(c.Home, "session.yaml")
}

// defaultHome returns $XDG_CONFIG_HOME/arkive, falling back to ~/.config/arkive
func defaultHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "arkive")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "arkive")
	}
	return ".arkive"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

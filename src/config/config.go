package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// ConfigPathEnvVar points at an alternate .env when none sits next to
	// the executable.
	ConfigPathEnvVar = "DICTYY_CONFIG"
	// APIKeyPathEnvVar points at a file holding the LLM API key, preferred
	// over the plain LLM_API_KEY variable.
	APIKeyPathEnvVar = "LLM_API_KEY_FILE"

	DefaultHotkey         = "Ctrl+`"
	DefaultPollIntervalMS = 200
	DefaultStabilityMS    = 500
	DefaultLLMTimeoutSec  = 15
	defaultDBFileName     = "dictyy.db"
)

type Config struct {
	// DBPath is the SQLite dictionary database. Defaults to dictyy.db next
	// to the executable.
	DBPath string

	EnableFileLogging bool
	Hotkey            string

	// CaptureEnabled is the startup state of screen word capture; the tray
	// and hotkey toggle it at runtime.
	CaptureEnabled bool
	PollIntervalMS int
	StabilityMS    int

	// LLM fallback for words the local dictionary misses. Empty APIKey
	// disables the fallback.
	LLMAPIBase    string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeoutSec int
}

func Load() (*Config, error) {
	// Priority: .env in the executable directory, then a file named by
	// DICTYY_CONFIG, then plain process environment.
	envPath := resolveEnvPath()
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		DBPath:            getEnvWithDefault("DICT_DB_PATH", defaultDBPath()),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		CaptureEnabled:    strings.ToLower(os.Getenv("CAPTURE_ENABLED")) != "false",
		PollIntervalMS:    getEnvInt("POLL_INTERVAL_MS", DefaultPollIntervalMS),
		StabilityMS:       getEnvInt("STABILITY_MS", DefaultStabilityMS),
		LLMAPIBase:        getEnvWithDefault("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMAPIKey:         resolveAPIKey(),
		LLMModel:          getEnvWithDefault("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeoutSec:     getEnvInt("LLM_TIMEOUT_SEC", DefaultLLMTimeoutSec),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func defaultDBPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return defaultDBFileName
	}
	return filepath.Join(filepath.Dir(execPath), defaultDBFileName)
}

func resolveAPIKey() string {
	if keyPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); keyPath != "" {
		if data, err := os.ReadFile(keyPath); err == nil {
			if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
				return fileKey
			}
		}
	}
	return os.Getenv("LLM_API_KEY")
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultEnvFile = ".env"

// Config holds every setting read from the environment
type Config struct {
	SelfIPs          []string
	ExcludeCountries []string
	LogDir           string
	GeoIPDB          string
	GeoIPCacheSize   int
	TopN             int
	LogLevel         string
	ServerAddr       string
	ReportDir        string
	WatchDebounce    time.Duration
	SQLiteKeepRuns   int
}

// Load reads envFile (DefaultEnvFile when empty) if it exists, then the
// process environment. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	return &Config{
		SelfIPs:          SplitList(getenv("MY_IP", ""), false),
		ExcludeCountries: SplitList(getenv("EXCLUDE_COUNTRIES", ""), true),
		LogDir:           getenv("LOG_DIR", "logs"),
		GeoIPDB:          getenv("GEOIP_DB", "src/GeoLite2-Country.mmdb"),
		GeoIPCacheSize:   getenvInt("GEOIP_CACHE_SIZE", 10000),
		TopN:             getenvInt("TOP_N", 10),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		ServerAddr:       getenv("SERVER_ADDR", ":8080"),
		ReportDir:        getenv("REPORT_DIR", "reports"),
		WatchDebounce:    time.Duration(getenvInt("WATCH_DEBOUNCE", 2)) * time.Second,
		SQLiteKeepRuns:   getenvInt("SQLITE_KEEP_RUNS", 0),
	}, nil
}

// SplitList splits a comma-separated value, trimming items and dropping
// empty ones. With upper every item is upper-cased.
func SplitList(value string, upper bool) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if upper {
			item = strings.ToUpper(item)
		}
		items = append(items, item)
	}
	return items
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

package app

import (
	"os"
	"strings"
	"time"

	"rentdash/internal/alerts"
	"rentdash/internal/config"
	"rentdash/internal/rentapi"
	"rentdash/internal/session"
	"rentdash/internal/workspace"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		// Default based on environment
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// GetRequiredEnv fetches a required environment variable or exits if not set.
func GetRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatal().Msgf("%s environment variable is required", key)
	}
	return value
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// InitializeClient creates the rental API client.
func InitializeClient() *rentapi.Client {
	baseURL := strings.TrimSuffix(GetRequiredEnv("RENTDASH_API_URL"), "/")
	token := os.Getenv("RENTDASH_API_TOKEN")

	log.Debug().Str("base_url", baseURL).Msg("Initializing rental API client")
	return rentapi.NewClient(baseURL, token)
}

// InitializeAlertClient creates the ntfy expiry-alert client.
func InitializeAlertClient() *alerts.Client {
	enabled := GetEnvWithDefault("NTFY_ENABLED", "false") == "true"
	baseURL := GetEnvWithDefault("NTFY_URL", "https://ntfy.sh")
	topic := GetEnvWithDefault("NTFY_TOPIC", "rentdash")
	priority := GetEnvWithDefault("NTFY_PRIORITY", "")

	client := alerts.NewClient(baseURL, topic, enabled, priority)

	if enabled {
		log.Info().Str("topic", topic).Msg("Expiry alerts enabled")
	} else {
		log.Debug().Msg("Expiry alerts disabled")
	}
	return client
}

// LoadSessionConfig reads the two tick cadences and the retry mode from the
// environment. RENTDASH_RETRY=infinite keeps each refresh cycle retrying
// until it succeeds instead of degrading after the bounded preset.
func LoadSessionConfig() session.Config {
	resilience := config.DefaultResilienceConfig
	switch mode := strings.ToLower(GetEnvWithDefault("RENTDASH_RETRY", "default")); mode {
	case "infinite":
		resilience = config.InfiniteResilienceConfig
		log.Debug().Msg("Using infinite refresh retry")
	case "default":
	default:
		log.Warn().Str("value", mode).Msg("Unknown RENTDASH_RETRY mode, using default")
	}

	return session.Config{
		RefreshInterval: parseIntervalEnv("RENTDASH_REFRESH_INTERVAL", 30*time.Second),
		DisplayInterval: parseIntervalEnv("RENTDASH_DISPLAY_INTERVAL", 1*time.Second),
		Resilience:      resilience,
	}
}

// LoadScope reads the initial workspace/platform filter from the environment.
func LoadScope() workspace.Scope {
	return workspace.Scope{
		Workspace: os.Getenv("RENTDASH_WORKSPACE"),
		Platform:  os.Getenv("RENTDASH_PLATFORM"),
	}
}

func parseIntervalEnv(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid interval, using default")
		return defaultValue
	}
	return interval
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Ledger backend selection: memory, csv, sqlite or sheets
	LedgerBackend string

	// CSV ledger
	CSVPath string

	// SQLite ledger
	SQLiteDBPath string

	// AMQP (record mirror pipeline, optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Narration (optional LLM phrasing of reports)
	LLMEndpoint    string
	LLMModel       string
	LLMAPIKey      string
	LLMTimeout     time.Duration
	LLMTemperature float64

	// Transcription
	TranscribeEndpoint string
	TranscribeAPIKey   string
	TranscribeTimeout  time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		LedgerBackend: getEnv("LEDGER_BACKEND", "csv"),
		CSVPath:       getEnv("CSV_PATH", "./data/ledger.csv"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/fintone.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintone"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_records"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		LLMEndpoint:    getEnv("LLM_ENDPOINT", ""),
		LLMModel:       getEnv("LLM_MODEL", "llama3.2"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.1),

		TranscribeEndpoint: getEnv("TRANSCRIBE_ENDPOINT", ""),
		TranscribeAPIKey:   getEnv("TRANSCRIBE_API_KEY", ""),
		TranscribeTimeout:  getEnvDuration("TRANSCRIBE_TIMEOUT", 60*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks the configuration, collecting every problem into one
// error so operators fix them in a single pass.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.LedgerBackend {
	case "memory":
	case "csv":
		if c.CSVPath == "" {
			problems = append(problems, "CSV path cannot be empty when using csv backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			problems = append(problems, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			problems = append(problems, "Google Sheet name is required when using sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			problems = append(problems, "service account credentials are required for sheets backend (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS)")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				problems = append(problems, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid ledger backend '%s': must be one of [memory csv sqlite sheets]", c.LedgerBackend))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.LLMEndpoint != "" {
		if parsedURL, err := url.Parse(c.LLMEndpoint); err != nil || parsedURL.Scheme == "" {
			problems = append(problems, fmt.Sprintf("invalid LLM endpoint '%s'", c.LLMEndpoint))
		}
		if c.LLMModel == "" {
			problems = append(problems, "LLM model cannot be empty when an LLM endpoint is set")
		}
		if c.LLMTimeout < time.Second {
			problems = append(problems, fmt.Sprintf("invalid LLM timeout %v: must be at least 1 second", c.LLMTimeout))
		}
		if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
			problems = append(problems, fmt.Sprintf("invalid LLM temperature %v: must be between 0 and 2", c.LLMTemperature))
		}
	}

	if c.TranscribeEndpoint != "" {
		if parsedURL, err := url.Parse(c.TranscribeEndpoint); err != nil || parsedURL.Scheme == "" {
			problems = append(problems, fmt.Sprintf("invalid transcription endpoint '%s'", c.TranscribeEndpoint))
		}
		if c.TranscribeTimeout < time.Second {
			problems = append(problems, fmt.Sprintf("invalid transcription timeout %v: must be at least 1 second", c.TranscribeTimeout))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of [text json]", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

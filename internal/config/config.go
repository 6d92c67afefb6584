// Package config resolves flags, environment variables and an optional .env
// file into the immutable settings used for one invocation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/marcus/fastly-stats/internal/fastly"
	"github.com/marcus/fastly-stats/internal/output"
	"github.com/spf13/pflag"
)

// Environment variables
const (
	EnvToken    = "FASTLY_TOKEN"
	EnvAPIURL   = "FASTLY_API_URL"
	EnvLogLevel = "FASTLY_STATS_LOG_LEVEL"
)

// Flag names shared by the root command and Load.
const (
	FlagToken   = "token"
	FlagFormat  = "format"
	FlagTimeout = "timeout"
	FlagVerbose = "verbose"
	FlagAPIURL  = "api-url"
)

const envFile = ".env"

// ErrMissingToken is returned when no token is available from any source.
var ErrMissingToken = errors.New("token required via --token or " + EnvToken)

// Settings is the resolved configuration for a single command run.
type Settings struct {
	Token    string
	BaseURL  string
	Timeout  time.Duration
	Format   output.OutputMode
	LogLevel slog.Level
}

// Mode combines the global --format with a per-command --json flag; either
// one selects JSON output.
func (s *Settings) Mode(localJSON bool) output.OutputMode {
	if localJSON || s.Format == output.ModeJSON {
		return output.ModeJSON
	}
	return output.ModeText
}

// LoadDotEnv loads KEY=VALUE pairs from .env in dir. Variables already set in
// the environment win. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, envFile)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load resolves settings from parsed flags and the environment.
// Token priority: --token > FASTLY_TOKEN (which .env may populate).
func Load(flags *pflag.FlagSet) (*Settings, error) {
	formatStr, _ := flags.GetString(FlagFormat)
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	timeout, err := flags.GetDuration(FlagTimeout)
	if err != nil {
		timeout = fastly.DefaultTimeout
	}
	if timeout < 0 {
		return nil, fmt.Errorf("invalid timeout %s", timeout)
	}

	token, _ := flags.GetString(FlagToken)
	token = strings.TrimSpace(token)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(EnvToken))
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	baseURL, _ := flags.GetString(FlagAPIURL)
	if baseURL == "" {
		baseURL = os.Getenv(EnvAPIURL)
	}
	if baseURL == "" {
		baseURL = fastly.DefaultBaseURL
	}

	level := parseLevel(os.Getenv(EnvLogLevel))
	if verbose, _ := flags.GetBool(FlagVerbose); verbose {
		level = slog.LevelDebug
	}

	return &Settings{
		Token:    token,
		BaseURL:  baseURL,
		Timeout:  timeout,
		Format:   format,
		LogLevel: level,
	}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by DAYLINE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("DAYLINE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

// BotToken returns the Telegram bot token. The bot cannot run without it.
func BotToken() string {
	return os.Getenv("BOT_TOKEN")
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// UTCOffsetHours returns the fixed offset of the user-local timezone from
// UTC. Defaults to 5.
func UTCOffsetHours() int {
	off, err := strconv.Atoi(os.Getenv("UTC_OFFSET_HOURS"))
	if err != nil {
		return 5
	}
	return off
}

// CutoffHour and CutoffMinute define the local time of day after which the
// daily flow opens and reminders fire. Defaults to 21:00.
func CutoffHour() int {
	h, err := strconv.Atoi(os.Getenv("CUTOFF_HOUR"))
	if err != nil || h < 0 || h > 23 {
		return 21
	}
	return h
}

func CutoffMinute() int {
	m, err := strconv.Atoi(os.Getenv("CUTOFF_MINUTE"))
	if err != nil || m < 0 || m > 59 {
		return 0
	}
	return m
}

// SessionTimeout returns the idle threshold after which an unfinished entry
// is abandoned. Defaults to 30m.
func SessionTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("SESSION_TIMEOUT"))
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// RecentWindow returns how many recent days feed the analyzer and exports.
// Defaults to 30.
func RecentWindow() int {
	n, err := strconv.Atoi(os.Getenv("RECENT_WINDOW"))
	if err != nil || n <= 0 {
		return 30
	}
	return n
}

// ReminderRPS returns the outbound send rate for reminder sweeps.
// Defaults to 20, below Telegram's broadcast ceiling.
func ReminderRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("REMINDER_RPS"), 64)
	if err != nil || rps <= 0 {
		return 20
	}
	return rps
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// RateLimitRPS returns requests per second limit for the status server.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

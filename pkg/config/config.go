package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Features  FeaturesConfig
	Scheduler SchedulerConfig
	Push      PushConfig
	Policy    PolicyConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// FeaturesConfig sizes the background feature computation queue.
type FeaturesConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
}

type SchedulerConfig struct {
	Enabled  bool
	Timezone string
	// Hours at minute 0 on which reminders are evaluated.
	Hours     []int
	SendRate  float64
	SendBurst int
}

type PushConfig struct {
	// Provider is "log" or "webhook".
	Provider    string
	WebhookURL  string
	SendTimeout time.Duration
}

type PolicyConfig struct {
	// File overrides the embedded policy tables when set.
	File string
}

// Location resolves the scheduler timezone, falling back to the process local zone.
func (c SchedulerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	workers, _ := strconv.Atoi(getEnv("FEATURES_WORKERS", "4"))
	queueSize, _ := strconv.Atoi(getEnv("FEATURES_QUEUE_SIZE", "256"))
	maxAttempts, _ := strconv.Atoi(getEnv("FEATURES_MAX_ATTEMPTS", "3"))
	retryDelayMs, _ := strconv.Atoi(getEnv("FEATURES_RETRY_DELAY_MS", "2000"))
	sendRate, _ := strconv.ParseFloat(getEnv("SCHEDULER_SEND_RATE", "20"), 64)
	sendBurst, _ := strconv.Atoi(getEnv("SCHEDULER_SEND_BURST", "10"))
	sendTimeout, _ := strconv.Atoi(getEnv("PUSH_SEND_TIMEOUT_SECONDS", "5"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "3001"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finsignal"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(maxConns),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Features: FeaturesConfig{
			Workers:     workers,
			QueueSize:   queueSize,
			MaxAttempts: maxAttempts,
			RetryDelay:  time.Duration(retryDelayMs) * time.Millisecond,
		},
		Scheduler: SchedulerConfig{
			Enabled:   getEnv("SCHEDULER_ENABLED", "true") == "true",
			Timezone:  getEnv("SCHEDULER_TIMEZONE", ""),
			Hours:     parseHours(getEnv("SCHEDULER_HOURS", "9,13,17,18")),
			SendRate:  sendRate,
			SendBurst: sendBurst,
		},
		Push: PushConfig{
			Provider:    getEnv("PUSH_PROVIDER", "log"),
			WebhookURL:  getEnv("PUSH_WEBHOOK_URL", ""),
			SendTimeout: time.Duration(sendTimeout) * time.Second,
		},
		Policy: PolicyConfig{
			File: getEnv("POLICY_FILE", ""),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseHours reads a comma separated hour list, skipping anything outside 0-23.
func parseHours(raw string) []int {
	var hours []int
	for _, part := range strings.Split(raw, ",") {
		h, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || h < 0 || h > 23 {
			continue
		}
		hours = append(hours, h)
	}
	return hours
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Booking  BookingConfig
	Report   ReportConfig
	Log      LogConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s Timezone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// BookingConfig holds the scheduling rules: the slot grid parameters, the
// maximum registrable age, and the repeated-cancellation threshold.
type BookingConfig struct {
	OpenTime     string // HH:MM
	CloseTime    string // HH:MM
	SlotMinutes  int
	MaxAge       int
	MaxCancelled int // cancellations within the window that trigger auto-disable
	WindowDays   int // look-back window for the threshold rule
}

// ReportConfig drives report defaults and PDF styling.
type ReportConfig struct {
	DefaultPageSize     int
	DefaultMinCancelled int

	Title string

	ColorPrimary   string
	ColorPending   string
	ColorConfirmed string
	ColorCancelled string
	ColorAttended  string
	ColorEnabled   string
	ColorDisabled  string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

func Load() (*Config, error) {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "clinicbook-api"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "clinicbook"),
			User:            getEnv("DB_USER", "clinicbook"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Booking: BookingConfig{
			OpenTime:     getEnv("BOOKING_OPEN_TIME", "08:00"),
			CloseTime:    getEnv("BOOKING_CLOSE_TIME", "17:00"),
			SlotMinutes:  getEnvInt("BOOKING_SLOT_MINUTES", 30),
			MaxAge:       getEnvInt("BOOKING_MAX_AGE", 120),
			MaxCancelled: getEnvInt("BOOKING_MAX_CANCELLED", 5),
			WindowDays:   getEnvInt("BOOKING_CANCEL_WINDOW_DAYS", 180),
		},
		Report: ReportConfig{
			DefaultPageSize:     getEnvInt("REPORT_PAGE_SIZE", 5),
			DefaultMinCancelled: getEnvInt("REPORT_MIN_CANCELLED", 5),
			Title:               getEnv("REPORT_TITLE", "MEDICAL APPOINTMENT MANAGEMENT SYSTEM"),
			ColorPrimary:        getEnv("REPORT_COLOR_PRIMARY", "#2C3E50"),
			ColorPending:        getEnv("REPORT_COLOR_PENDING", "#F39C12"),
			ColorConfirmed:      getEnv("REPORT_COLOR_CONFIRMED", "#27AE60"),
			ColorCancelled:      getEnv("REPORT_COLOR_CANCELLED", "#E74C3C"),
			ColorAttended:       getEnv("REPORT_COLOR_ATTENDED", "#3498DB"),
			ColorEnabled:        getEnv("REPORT_COLOR_ENABLED", "#27AE60"),
			ColorDisabled:       getEnv("REPORT_COLOR_DISABLED", "#E74C3C"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "clinicbook-api"),
			Endpoint:    getEnv("OTLP_ENDPOINT", "localhost:4318"),
			SampleRate:  getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Database.Password == "" && cfg.App.Environment != "development" {
		errs = append(errs, "DB_PASSWORD is required in non-development environments")
	}
	if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
		errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
	}
	if cfg.Booking.SlotMinutes <= 0 {
		errs = append(errs, "BOOKING_SLOT_MINUTES must be positive")
	}
	if cfg.Booking.MaxCancelled <= 0 {
		errs = append(errs, "BOOKING_MAX_CANCELLED must be positive")
	}
	if cfg.Booking.WindowDays <= 0 {
		errs = append(errs, "BOOKING_CANCEL_WINDOW_DAYS must be positive")
	}
	if cfg.Report.DefaultPageSize <= 0 {
		errs = append(errs, "REPORT_PAGE_SIZE must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

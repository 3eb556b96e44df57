package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

var (
	ErrLoadConfig    = errors.New("config: failed to load config")
	ErrInvalidConfig = errors.New("config: invalid config")
)

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	UserService UserServiceConfig `toml:"user_service"`
	Booking     BookingConfig     `toml:"booking"`
	Payments    PaymentsConfig    `toml:"payments"`
	Reminders   RemindersConfig   `toml:"reminders"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type UserServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// BookingConfig правила бронирования
type BookingConfig struct {
	Timezone              string `toml:"timezone"`
	Currency              string `toml:"currency"`
	CancelBufferHours     int    `toml:"cancel_buffer_hours"`
	RescheduleBufferHours int    `toml:"reschedule_buffer_hours"`
	MaxReschedules        int    `toml:"max_reschedules"`
	SlotStepMinutes       int    `toml:"slot_step_minutes"`
	MaxSlotRangeDays      int    `toml:"max_slot_range_days"`
	SerializableRetries   int    `toml:"serializable_retries"`
	FullRefundHours       int    `toml:"full_refund_hours"`
	PartialRefundHours    int    `toml:"partial_refund_hours"`
	PartialRefundPercent  int    `toml:"partial_refund_percent"`
}

// Location часовой пояс, в котором интерпретируются даты и время бронирований
func (c BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

type PaymentsConfig struct {
	CommissionRate  string `toml:"commission_rate"`
	StripeSecretKey string `toml:"stripe_secret_key"`
}

// Commission доля платформы от суммы платежа
func (c PaymentsConfig) Commission() (decimal.Decimal, error) {
	return decimal.NewFromString(c.CommissionRate)
}

type RemindersConfig struct {
	Enabled   bool   `toml:"enabled"`
	Schedule  string `toml:"schedule"`
	BatchSize int    `toml:"batch_size"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Load читает TOML файл, применяет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "wellness-booking",
		},
		UserService: UserServiceConfig{Timeout: 5},
		Booking: BookingConfig{
			Timezone:              "Asia/Colombo",
			Currency:              "LKR",
			CancelBufferHours:     2,
			RescheduleBufferHours: 24,
			MaxReschedules:        2,
			SlotStepMinutes:       30,
			MaxSlotRangeDays:      31,
			SerializableRetries:   3,
			FullRefundHours:       24,
			PartialRefundHours:    2,
			PartialRefundPercent:  50,
		},
		Payments: PaymentsConfig{CommissionRate: "0.10"},
		Reminders: RemindersConfig{
			Enabled:   true,
			Schedule:  "@every 1m",
			BatchSize: 100,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("%w: server.http_port must be positive", ErrInvalidConfig)
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}
	if c.Booking.SlotStepMinutes <= 0 || c.Booking.SlotStepMinutes > 24*60 {
		return fmt.Errorf("%w: booking.slot_step_minutes must be in (0, 1440]", ErrInvalidConfig)
	}
	if c.Booking.MaxSlotRangeDays <= 0 {
		return fmt.Errorf("%w: booking.max_slot_range_days must be positive", ErrInvalidConfig)
	}
	if c.Booking.MaxReschedules < 0 || c.Booking.CancelBufferHours < 0 || c.Booking.RescheduleBufferHours < 0 {
		return fmt.Errorf("%w: booking buffers and limits must not be negative", ErrInvalidConfig)
	}
	if c.Booking.PartialRefundHours > c.Booking.FullRefundHours {
		return fmt.Errorf("%w: booking.partial_refund_hours must not exceed full_refund_hours", ErrInvalidConfig)
	}
	if c.Booking.PartialRefundPercent < 0 || c.Booking.PartialRefundPercent > 100 {
		return fmt.Errorf("%w: booking.partial_refund_percent must be in [0, 100]", ErrInvalidConfig)
	}
	rate, err := c.Payments.Commission()
	if err != nil {
		return fmt.Errorf("%w: payments.commission_rate: %v", ErrInvalidConfig, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: payments.commission_rate must be in [0, 1)", ErrInvalidConfig)
	}
	if c.Reminders.Enabled && c.Reminders.BatchSize <= 0 {
		return fmt.Errorf("%w: reminders.batch_size must be positive", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate_limit values must be positive", ErrInvalidConfig)
	}
	return nil
}

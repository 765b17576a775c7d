package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig возвращается, если конфигурация не проходит валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config корневая конфигурация сервиса
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Tracing    TracingConfig    `toml:"tracing"`
	Redis      RedisConfig      `toml:"redis"`
	Kafka      KafkaConfig      `toml:"kafka"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
	Booking    BookingConfig    `toml:"booking"`
	Reconciler ReconcilerConfig `toml:"reconciler"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

// DatabaseConfig параметры хранилища
// Driver = "memory" поднимает сервис без Postgres (демо и локальная разработка)
type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// IsMemory true, если выбрано in-memory хранилище
func (d DatabaseConfig) IsMemory() bool {
	return d.Driver == DriverMemory
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

type TracingConfig struct {
	Enabled      bool    `toml:"enabled"`
	OTLPEndpoint string  `toml:"otlp_endpoint"`
	SampleRatio  float64 `toml:"sample_ratio"`
}

// RedisConfig блокировки ресурсов. При Enabled = false используется блокировка в памяти процесса
type RedisConfig struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	LockTTLMs int    `toml:"lock_ttl_ms"`
	LockWait  int    `toml:"lock_wait_ms"`
	KeyPrefix string `toml:"key_prefix"`
}

// KafkaConfig публикация событий бронирований. Пустой Brokers отключает публикацию
type KafkaConfig struct {
	Brokers      string `toml:"brokers"`
	Topic        string `toml:"topic"`
	WriteTimeout int    `toml:"write_timeout_ms"`
}

// BrokerList разбирает список брокеров через запятую
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// BookingConfig бизнес-параметры расписания
type BookingConfig struct {
	OpenTime                   string `toml:"open_time"`
	CloseTime                  string `toml:"close_time"`
	ClinicalStepMinutes        int    `toml:"clinical_step_minutes"`
	WellnessStepMinutes        int    `toml:"wellness_step_minutes"`
	WellnessPreparationMinutes int    `toml:"wellness_preparation_minutes"`
	// AvailableWithoutSchedule: специалист без записи в расписании на день недели доступен весь день
	AvailableWithoutSchedule bool `toml:"available_without_schedule"`
	AutoAssignRooms          bool `toml:"auto_assign_rooms"`
}

// ReconcilerConfig фоновое восстановление рассогласованных пар записей
type ReconcilerConfig struct {
	Enabled        bool `toml:"enabled"`
	IntervalSec    int  `toml:"interval_sec"`
	BatchSize      int  `toml:"batch_size"`
	MaxAttempts    int  `toml:"max_attempts"`
	BackoffSeconds int  `toml:"backoff_sec"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load читает .env (если есть), затем TOML-файл, применяет переменные окружения и значения по умолчанию
func Load(path string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = port
		}
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.OTLPEndpoint = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}

	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "clinic-booking"
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}

	if cfg.Redis.LockTTLMs == 0 {
		cfg.Redis.LockTTLMs = 5000
	}
	if cfg.Redis.LockWait == 0 {
		cfg.Redis.LockWait = 2000
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "clinic-booking:lock:"
	}

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "booking-events"
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 3000
	}

	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 20
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 40
	}

	if cfg.Booking.OpenTime == "" {
		cfg.Booking.OpenTime = "08:00"
	}
	if cfg.Booking.CloseTime == "" {
		cfg.Booking.CloseTime = "19:00"
	}
	if cfg.Booking.ClinicalStepMinutes == 0 {
		cfg.Booking.ClinicalStepMinutes = 15
	}
	if cfg.Booking.WellnessStepMinutes == 0 {
		cfg.Booking.WellnessStepMinutes = 30
	}
	if cfg.Booking.WellnessPreparationMinutes == 0 {
		cfg.Booking.WellnessPreparationMinutes = 15
	}

	if cfg.Reconciler.IntervalSec == 0 {
		cfg.Reconciler.IntervalSec = 30
	}
	if cfg.Reconciler.BatchSize == 0 {
		cfg.Reconciler.BatchSize = 50
	}
	if cfg.Reconciler.MaxAttempts == 0 {
		cfg.Reconciler.MaxAttempts = 10
	}
	if cfg.Reconciler.BackoffSeconds == 0 {
		cfg.Reconciler.BackoffSeconds = 60
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverMemory {
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	open, err := parseClock(c.Booking.OpenTime)
	if err != nil {
		return fmt.Errorf("%w: booking.open_time: %v", ErrInvalidConfig, err)
	}
	closing, err := parseClock(c.Booking.CloseTime)
	if err != nil {
		return fmt.Errorf("%w: booking.close_time: %v", ErrInvalidConfig, err)
	}
	if closing <= open {
		return fmt.Errorf("%w: booking.close_time must be after open_time", ErrInvalidConfig)
	}
	if c.Booking.ClinicalStepMinutes <= 0 || c.Booking.WellnessStepMinutes <= 0 {
		return fmt.Errorf("%w: slot steps must be positive", ErrInvalidConfig)
	}
	if c.Booking.WellnessPreparationMinutes < 0 {
		return fmt.Errorf("%w: wellness_preparation_minutes must not be negative", ErrInvalidConfig)
	}
	return nil
}

func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return h*60 + m, nil
}

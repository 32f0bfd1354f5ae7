package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Roster   RosterConfig
	Metrics  MetricsConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the secret shared with the authenticating gateway. This
// service never issues tokens; it only verifies what the gateway forwards.
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ShiftWindowConfig describes one shift type's clock window and its nominal
// duration in hours. Night windows cross midnight, so the duration is fixed
// here rather than derived from raw clock arithmetic.
type ShiftWindowConfig struct {
	Start string
	End   string
	Hours float64
}

// RosterConfig carries the labor-rule thresholds and scheduling windows
// consumed by the roster engine. Values are passed explicitly into the engine,
// never read from a global.
type RosterConfig struct {
	MaxHoursPerWeek    float64
	MaxShiftsPerWeek   int
	MaxConsecutiveDays int
	MinRestHours       float64
	ProposalTTL        time.Duration
	Departments        []string
	MorningWindow      ShiftWindowConfig
	AfternoonWindow    ShiftWindowConfig
	NightWindow        ShiftWindowConfig
	EmergencyWindow    ShiftWindowConfig
}

// MetricsConfig governs cache behaviour for roster metrics responses.
type MetricsConfig struct {
	CacheTTL time.Duration
}

// ExportsConfig toggles roster export endpoints.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
		ConnMaxIdleTime: parseDuration(v.GetString("DB_CONN_MAX_IDLE_TIME"), 30*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Roster = RosterConfig{
		MaxHoursPerWeek:    v.GetFloat64("ROSTER_MAX_HOURS_PER_WEEK"),
		MaxShiftsPerWeek:   v.GetInt("ROSTER_MAX_SHIFTS_PER_WEEK"),
		MaxConsecutiveDays: v.GetInt("ROSTER_MAX_CONSECUTIVE_DAYS"),
		MinRestHours:       v.GetFloat64("ROSTER_MIN_REST_HOURS"),
		ProposalTTL:        parseDuration(v.GetString("ROSTER_PROPOSAL_TTL"), 30*time.Minute),
		Departments:        splitAndTrim(v.GetString("ROSTER_DEPARTMENTS")),
		MorningWindow:      windowFromEnv(v, "MORNING", ShiftWindowConfig{Start: "06:00", End: "14:00", Hours: 8}),
		AfternoonWindow:    windowFromEnv(v, "AFTERNOON", ShiftWindowConfig{Start: "14:00", End: "22:00", Hours: 8}),
		NightWindow:        windowFromEnv(v, "NIGHT", ShiftWindowConfig{Start: "22:00", End: "06:00", Hours: 8}),
		EmergencyWindow:    windowFromEnv(v, "EMERGENCY", ShiftWindowConfig{Start: "08:00", End: "20:00", Hours: 12}),
	}

	cfg.Metrics = MetricsConfig{
		CacheTTL: parseDuration(v.GetString("ROSTER_METRICS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_ROSTER_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hrm_roster")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "30m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ROSTER_MAX_HOURS_PER_WEEK", 40.0)
	v.SetDefault("ROSTER_MAX_SHIFTS_PER_WEEK", 5)
	v.SetDefault("ROSTER_MAX_CONSECUTIVE_DAYS", 7)
	v.SetDefault("ROSTER_MIN_REST_HOURS", 11.0)
	v.SetDefault("ROSTER_PROPOSAL_TTL", "30m")
	v.SetDefault("ROSTER_DEPARTMENTS", "Surgery,Emergency,Pediatrics,Radiology,General")
	v.SetDefault("ROSTER_METRICS_CACHE_TTL", "5m")
	v.SetDefault("ENABLE_ROSTER_EXPORTS", true)

	v.SetDefault("SHIFT_MORNING_START", "06:00")
	v.SetDefault("SHIFT_MORNING_END", "14:00")
	v.SetDefault("SHIFT_MORNING_HOURS", 8.0)
	v.SetDefault("SHIFT_AFTERNOON_START", "14:00")
	v.SetDefault("SHIFT_AFTERNOON_END", "22:00")
	v.SetDefault("SHIFT_AFTERNOON_HOURS", 8.0)
	v.SetDefault("SHIFT_NIGHT_START", "22:00")
	v.SetDefault("SHIFT_NIGHT_END", "06:00")
	v.SetDefault("SHIFT_NIGHT_HOURS", 8.0)
	v.SetDefault("SHIFT_EMERGENCY_START", "08:00")
	v.SetDefault("SHIFT_EMERGENCY_END", "20:00")
	v.SetDefault("SHIFT_EMERGENCY_HOURS", 12.0)
}

func windowFromEnv(v *viper.Viper, name string, fallback ShiftWindowConfig) ShiftWindowConfig {
	window := ShiftWindowConfig{
		Start: v.GetString("SHIFT_" + name + "_START"),
		End:   v.GetString("SHIFT_" + name + "_END"),
		Hours: v.GetFloat64("SHIFT_" + name + "_HOURS"),
	}
	if window.Start == "" || window.End == "" || window.Hours <= 0 {
		return fallback
	}
	return window
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

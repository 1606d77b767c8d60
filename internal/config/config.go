package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/officehub/officehub-backend-go/internal/domain/shift"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Shift        ShiftConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// ShiftConfig selects the deployment's shift timezone and overtime policies.
// The shift clock windows themselves are fixed; only the overtime derivation
// and the night boundary variant are configurable.
type ShiftConfig struct {
	Timezone              string
	DayOvertimePolicy     string
	NightOvertimePolicy   string
	NightOvertimeBoundary string // "04:05" or the "04:00" variant
}

func Load() (*Config, error) {
	// A missing .env file is fine in containerized deployments; the
	// environment is already populated there.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "officehub"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	// Shift configuration
	config.Shift = ShiftConfig{
		Timezone:              getEnv("SHIFT_TIMEZONE", "Asia/Jakarta"),
		DayOvertimePolicy:     getEnv("DAY_OVERTIME_POLICY", string(shift.OvertimeFixedDaily)),
		NightOvertimePolicy:   getEnv("NIGHT_OVERTIME_POLICY", string(shift.OvertimeCheckoutBoundary)),
		NightOvertimeBoundary: getEnv("NIGHT_OVERTIME_BOUNDARY", "04:05"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := c.ShiftPolicies(); err != nil {
		return err
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ShiftPolicies builds the configured day and night shift policies.
func (c *Config) ShiftPolicies() (shift.Policies, error) {
	loc, err := time.LoadLocation(c.Shift.Timezone)
	if err != nil {
		return shift.Policies{}, fmt.Errorf("invalid SHIFT_TIMEZONE %q: %w", c.Shift.Timezone, err)
	}

	day := shift.DayShift(loc)
	switch c.Shift.DayOvertimePolicy {
	case string(shift.OvertimeFixedDaily), string(shift.OvertimeCheckoutBoundary):
		day.Overtime = shift.OvertimePolicy(c.Shift.DayOvertimePolicy)
	default:
		return shift.Policies{}, fmt.Errorf("invalid DAY_OVERTIME_POLICY %q", c.Shift.DayOvertimePolicy)
	}

	night := shift.NightShift(loc)
	switch c.Shift.NightOvertimePolicy {
	case string(shift.OvertimeFixedDaily), string(shift.OvertimeCheckoutBoundary):
		night.Overtime = shift.OvertimePolicy(c.Shift.NightOvertimePolicy)
	default:
		return shift.Policies{}, fmt.Errorf("invalid NIGHT_OVERTIME_POLICY %q", c.Shift.NightOvertimePolicy)
	}

	boundary, err := time.Parse("15:04", c.Shift.NightOvertimeBoundary)
	if err != nil {
		return shift.Policies{}, fmt.Errorf("invalid NIGHT_OVERTIME_BOUNDARY %q: %w", c.Shift.NightOvertimeBoundary, err)
	}
	night.OvertimeBoundary = boundary.Hour()*60 + boundary.Minute()

	return shift.Policies{Day: day, Night: night}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds token and OTP settings.
type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	TokenTTLHours  int    `mapstructure:"token_ttl_hours"`
	OtpTTLMinutes  int    `mapstructure:"otp_ttl_minutes"`
	OtpMaxAttempts int    `mapstructure:"otp_max_attempts"`
}

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// UploadConfig holds profile picture storage settings.
type UploadConfig struct {
	Dir string `mapstructure:"dir"`
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Log      LogConfig      `mapstructure:"log"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

// TokenTTL returns the login token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// OtpTTL returns the reset-code lifetime.
func (c *Config) OtpTTL() time.Duration {
	return time.Duration(c.Auth.OtpTTLMinutes) * time.Minute
}

// Load reads configuration from the given file (optional) and ET_-prefixed
// environment variables. Every key has a default so the server can start
// with no config file at all.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.path", "expenses.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("auth.otp_ttl_minutes", 10)
	v.SetDefault("auth.otp_max_attempts", 5)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("upload.dir", "uploads")

	// environment overrides, e.g. ET_SERVER_PORT=9000
	v.SetEnvPrefix("ET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

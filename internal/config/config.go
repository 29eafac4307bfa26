package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the chat service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chat-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"CHAT_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"CHAT_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DBPostgresqlWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Authentication
	JWTSecret        string   `env:"CHAT_JWT_SECRET,notEmpty"`
	SuperAdminEmails []string `env:"CHAT_SUPER_ADMIN_EMAILS" envSeparator:","`

	// Permission matrix knobs. Roles a STUDENT may not open a direct chat with.
	ElevatedRoles []string `env:"CHAT_ELEVATED_ROLES" envSeparator:"," envDefault:"DEAN,ADMIN,SUPER_ADMIN"`

	// Messaging
	EditWindow time.Duration `env:"CHAT_EDIT_WINDOW" envDefault:"15m"`

	// Realtime
	HeartbeatInterval time.Duration `env:"CHAT_HEARTBEAT_INTERVAL" envDefault:"30s"`
	WSSendBuffer      int           `env:"CHAT_WS_SEND_BUFFER" envDefault:"64"`
	WSAllowedOrigins  []string      `env:"CHAT_WS_ALLOWED_ORIGINS" envSeparator:","`

	// CORS
	CORSAllowOrigins []string `env:"CHAT_CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if cfg.WSSendBuffer <= 0 {
		cfg.WSSendBuffer = 64
	}
	if cfg.EditWindow <= 0 {
		cfg.EditWindow = 15 * time.Minute
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

package config

import "time"

type HTTP struct {
	Port            uint32        `env:"HTTP_PORT" envDefault:"8000"`
	Swagger         bool          `env:"HTTP_SWAGGER" envDefault:"true"`
	AllowedOrigins  []string      `env:"HTTP_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

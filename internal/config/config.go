package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	// CountryMode restricts who may invest and raise. "CA" limits both
	// sides to Canadian accounts; empty disables the check.
	CountryMode string `env:"COUNTRY_MODE" envDefault:"CA"`

	JWTExpireMinutes    int   `env:"JWT_EXPIRE_MINUTES" envDefault:"60"`
	ApplicationFeeCents int64 `env:"APPLICATION_FEE_CENTS" envDefault:"2500"`
	PlatformFeeBps      int   `env:"PLATFORM_FEE_BPS" envDefault:"200"`
	MaxInvestmentCents  int64 `env:"MAX_INVESTMENT_CENTS" envDefault:"50000000"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

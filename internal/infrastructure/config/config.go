package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// RulesFile points to the YAML file declaring rounding rules and
	// weekday factors. Empty means no rounding and no factors.
	RulesFile string `env:"RULES_FILE"`

	// RecalcWorkers is the number of sharded rate-recalculation workers.
	RecalcWorkers int `env:"RECALC_WORKERS, default=4"`

	Lockdown LockdownConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// LockdownConfig carries the raw lockdown window expressions. Start and End
// accept comma-separated date expressions; Grace is a signed offset such as
// "+3 days".
type LockdownConfig struct {
	Start    string `env:"LOCKDOWN_START"`
	End      string `env:"LOCKDOWN_END"`
	Grace    string `env:"LOCKDOWN_GRACE"`
	Timezone string `env:"LOCKDOWN_TZ"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=timesheet_engine"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

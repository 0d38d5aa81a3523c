package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"

	LockLocal = "local"
	LockRedis = "redis"

	SinkRedis = "redis"
	SinkLog   = "log"
)

type Config struct {
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"geev-escrow"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Storage struct {
		Driver     string `env:"STORAGE_DRIVER" envDefault:"redis"`
		SQLitePath string `env:"SQLITE_PATH" envDefault:"data/escrow.db"`
	}

	Redis struct {
		Host      string `env:"REDIS_HOST" envDefault:"localhost"`
		Port      int    `env:"REDIS_PORT" envDefault:"6379"`
		Password  string `env:"REDIS_PASSWORD" envDefault:""`
		DB        int    `env:"REDIS_DB" envDefault:"0"`
		KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"escrow:"`
	}

	Contract struct {
		// Custody account that holds deposited prizes and donations
		Address string        `env:"CONTRACT_ADDRESS,notEmpty"`
		Lock    string        `env:"HOST_LOCK" envDefault:"local"`
		LockTTL time.Duration `env:"HOST_LOCK_TTL" envDefault:"10s"`
	}

	Events struct {
		Sink     string `env:"EVENTS_SINK" envDefault:"redis"`
		Stream   string `env:"EVENTS_STREAM" envDefault:"events"`
		Group    string `env:"EVENTS_GROUP" envDefault:"escrow_indexer"`
		Consumer string `env:"EVENTS_CONSUMER" envDefault:"indexer_1"`
		MaxLen   int64  `env:"EVENTS_MAXLEN" envDefault:"100000"`
	}

	Auth struct {
		JWTSecret       string        `env:"JWT_SECRET,notEmpty"`
		SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
		TonProofDomain  string        `env:"TONPROOF_DOMAIN" envDefault:"localhost:3000"`
		TonProofPayload time.Duration `env:"TONPROOF_PAYLOAD_TTL" envDefault:"15m"`
	}

	Telegram struct {
		// Empty token disables the init_data gate
		BotToken    string        `env:"BOT_TOKEN" envDefault:""`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
	}

	AutoDraw struct {
		Enabled  bool          `env:"AUTO_DRAW_ENABLED" envDefault:"true"`
		Interval time.Duration `env:"AUTO_DRAW_INTERVAL" envDefault:"10s"`
	}

	FaucetEnabled bool `env:"FAUCET_ENABLED" envDefault:"false"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	// .env is optional, production sets variables directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.Contract.Lock {
	case LockLocal, LockRedis:
	default:
		return fmt.Errorf("unknown HOST_LOCK %q", c.Contract.Lock)
	}
	switch c.Events.Sink {
	case SinkRedis, SinkLog:
	default:
		return fmt.Errorf("unknown EVENTS_SINK %q", c.Events.Sink)
	}
	// Only the redis store checks the lock's fencing token on commit.
	if c.Contract.Lock == LockRedis && c.Storage.Driver != StorageRedis {
		return fmt.Errorf("HOST_LOCK=redis requires STORAGE_DRIVER=redis, got %q", c.Storage.Driver)
	}
	return nil
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

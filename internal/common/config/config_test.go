package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", "EQD4FPq-PRD4YtG87wgL7AErgQwHUMFQ-JxyYw8jzBPhqjfH")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, LockLocal, cfg.Contract.Lock)
	assert.Equal(t, 10*time.Second, cfg.Contract.LockTTL)
	assert.Equal(t, "events", cfg.Events.Stream)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.False(t, cfg.FaucetEnabled)
	assert.True(t, cfg.AutoDraw.Enabled)
	assert.Equal(t, 10*time.Second, cfg.AutoDraw.Interval)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoadRequiresContractAddress(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: true},
		{name: "unknown lock", mutate: func(c *Config) { c.Contract.Lock = "zk" }, wantErr: true},
		{name: "unknown sink", mutate: func(c *Config) { c.Events.Sink = "kafka" }, wantErr: true},
		{
			name: "redis lock over memory store",
			mutate: func(c *Config) {
				c.Storage.Driver = StorageMemory
				c.Contract.Lock = LockRedis
			},
			wantErr: true,
		},
		{
			name: "redis lock over sqlite store",
			mutate: func(c *Config) {
				c.Storage.Driver = StorageSQLite
				c.Contract.Lock = LockRedis
			},
			wantErr: true,
		},
		{
			name: "redis lock over redis store",
			mutate: func(c *Config) {
				c.Storage.Driver = StorageRedis
				c.Contract.Lock = LockRedis
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.Storage.Driver = StorageSQLite
			c.Contract.Lock = LockLocal
			c.Events.Sink = SinkLog
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

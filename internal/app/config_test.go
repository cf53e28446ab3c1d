package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		AppEnv:             "development",
		SessionSecret:      "session",
		CSRFSecret:         "csrf",
		IVARate:            "0.16",
		RateLimitPerMinute: 60,
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("CSRF_SECRET", "csrf")
	t.Setenv("IVA_RATE", "0.08")
	t.Setenv("BANK_CLABE", "012180001234567890")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.08", cfg.IVA().String())
	assert.Equal(t, "012180001234567890", cfg.BankCLABE)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.False(t, cfg.IsProduction())
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "missing session secret", mutate: func(c *Config) { c.SessionSecret = "" }},
		{name: "missing csrf secret", mutate: func(c *Config) { c.CSRFSecret = "" }},
		{name: "production without jwt", mutate: func(c *Config) { c.AppEnv = "production" }},
		{name: "production with jwt", mutate: func(c *Config) { c.AppEnv = "production"; c.JWTSecret = "jwt" }, ok: true},
		{name: "iva above one", mutate: func(c *Config) { c.IVARate = "16" }},
		{name: "iva garbage", mutate: func(c *Config) { c.IVARate = "abc" }},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimitPerMinute = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAsynqRedisOpt(t *testing.T) {
	cfg := validConfig()
	cfg.RedisAddr = "redis:6379"
	cfg.RedisDB = 2
	opt := AsynqRedisOpt(&cfg)
	assert.Equal(t, "redis:6379", opt.Addr)
	assert.Equal(t, 2, opt.DB)
}

func TestNewResponderFollowsEnvironment(t *testing.T) {
	cfg := validConfig()
	assert.True(t, NewResponder(&cfg, nil).Verbose)

	cfg.AppEnv = "production"
	assert.False(t, NewResponder(&cfg, nil).Verbose)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points CONFIG_FILE at path and sets the required variables
func isolate(t *testing.T, path string) {
	t.Helper()
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("POSTGRES_URL", "postgres://localhost/community")
	for _, key := range []string{"PORT", "MONGO_URI", "MONGO_DATABASE", "SESSION_TTL", "BCRYPT_COST", "RELATIONS_MODE", "LOG_PRETTY"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "mongodb://127.0.0.1:27017", cfg.MongoURI)
	assert.Equal(t, "CommUnityDB", cfg.MongoDB)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "set", cfg.RelationsMode)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
mongo_database: Neighbours
session_ttl: 2h
relations_mode: append
firebase_storage_bucket: community.appspot.com
`), 0o600))
	isolate(t, path)
	t.Setenv("PORT", "9100")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "Neighbours", cfg.MongoDB)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "append", cfg.RelationsMode)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "community.appspot.com", cfg.FirebaseStorageBucket)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"SESSION_TTL": "forever",
		"BCRYPT_COST": "many",
		"LOG_PRETTY":  "sometimes",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			isolate(t, filepath.Join(t.TempDir(), "missing.yaml"))
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaults()
		cfg.SessionSecret = "secret"
		cfg.PostgresURL = "postgres://localhost/community"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no secret", func(c *Config) { c.SessionSecret = "" }, "SESSION_SECRET"},
		{"no postgres", func(c *Config) { c.PostgresURL = "" }, "POSTGRES_URL"},
		{"no mongo", func(c *Config) { c.MongoURI = "" }, "MONGO_URI"},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, "SESSION_TTL"},
		{"cheap bcrypt", func(c *Config) { c.BcryptCost = 3 }, "BCRYPT_COST"},
		{"unknown mode", func(c *Config) { c.RelationsMode = "graph" }, "RELATIONS_MODE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

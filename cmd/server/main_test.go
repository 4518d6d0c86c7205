package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunReturnsConfigurationErrors(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("POSTGRES_URL", "postgres://localhost/community")

	assert.ErrorContains(t, run(), "SESSION_SECRET")
}

func TestRunReturnsBeforeTouchingDatabases(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("POSTGRES_URL", "postgres://localhost/community")
	t.Setenv("RELATIONS_MODE", "graph")

	assert.ErrorContains(t, run(), "RELATIONS_MODE")
}

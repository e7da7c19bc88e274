package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(envFrom(map[string]string{
		"SSQ_API_PG_DSN": "host=localhost user=ssq dbname=ssq",
	}))
	require.NoError(t, err)

	assert.Equal(t, "3007", cfg.ServerPort)
	assert.Equal(t, "ssq", cfg.PostgresSchema)
	assert.Equal(t, "", cfg.RedisPassword)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration())
}

func TestLoadRequiresDsn(t *testing.T) {
	_, err := Load(envFrom(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSQ_API_PG_DSN")
}

func TestLoadRejectsBadSessionTTL(t *testing.T) {
	_, err := Load(envFrom(map[string]string{
		"SSQ_API_PG_DSN":      "x",
		"SSQ_API_SESSION_TTL": "one day",
	}))
	assert.Error(t, err)
}

func TestStringMasksSecrets(t *testing.T) {
	cfg, err := Load(envFrom(map[string]string{
		"SSQ_API_PG_DSN":         "postgres://ssq:hunter2@db/ssq",
		"SSQ_API_REDIS_PASSWORD": "redispass",
	}))
	require.NoError(t, err)

	out := cfg.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "redispass")
	assert.True(t, strings.Contains(out, "pos*******"))
}

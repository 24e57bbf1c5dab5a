package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Parse([]byte("server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Storage.Driver)
	assert.Equal(t, "proxy", cfg.Narrative.Provider)
	assert.Equal(t, 30*time.Second, cfg.Narrative.Timeout)
	assert.Equal(t, 4000, cfg.Narrative.MaxTokens)
	assert.Equal(t, "sk-test", cfg.Narrative.AnthropicKey)
	assert.Nil(t, cfg.Narrative.Temperature)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("storage:\n  driver: sqlite\n"))
	assert.ErrorContains(t, err, "storage driver")

	_, err = Parse([]byte("narrative:\n  provider: magic\n"))
	assert.ErrorContains(t, err, "narrative provider")

	_, err = Parse([]byte("server: [oops"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: postgres
database:
  host: db
  port: 5432
  user: app
  password: secret
  name: readiness
narrative:
  provider: openai
  timeout: 10s
  temperature: 0.3
autosave:
  debounce: 250ms
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=readiness sslmode=disable", cfg.PostgresDSN())
	assert.Equal(t, 10*time.Second, cfg.Narrative.Timeout)
	require.NotNil(t, cfg.Narrative.Temperature)
	assert.Equal(t, 0.3, *cfg.Narrative.Temperature)
	assert.Equal(t, 250*time.Millisecond, cfg.Autosave.Debounce)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	var cfg Config
	cfg.Database.User, cfg.Database.Password = "u", "p"
	cfg.Database.Host, cfg.Database.Port, cfg.Database.Name = "h", 3306, "d"
	assert.Equal(t, "u:p@tcp(h:3306)/d?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg, err := Parse([]byte("log:\n  level: warn\n"))
	require.NoError(t, err)

	log := cfg.NewLogger(&buf)
	log.Info("hidden")
	log.Warn("shown", "session_id", "s1")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"session_id":"s1"`)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.6, cfg.Agent.ConfidenceThreshold, 0.001)
	assert.Equal(t, 14, cfg.Agent.CooldownDays)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "reengage.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentCompanies)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
agent:
  confidence_threshold: 0.75
  cooldown_days: 30
store:
  driver: postgres
  database_url: postgres://localhost/reengage
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.75, cfg.Agent.ConfidenceThreshold, 0.001)
	assert.Equal(t, 30, cfg.Agent.CooldownDays)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentCompanies)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("REENGAGE_STORE_DRIVER", "postgres")
	t.Setenv("REENGAGE_SLACK_BOT_TOKEN", "xoxb-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("REENGAGE_ANTHROPIC_KEY", "sk-ant-test")
	t.Setenv("REENGAGE_OPENAI_KEY", "sk-test")
	t.Setenv("REENGAGE_GMAIL_ACCESS_TOKEN", "ya29.test")
	t.Setenv("REENGAGE_TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("REENGAGE_NOTION_TOKEN", "secret_test")
	t.Setenv("REENGAGE_NOTION_PLAN_DB", "db-id")
	t.Setenv("REENGAGE_SALESFORCE_CLIENT_ID", "consumer-key")
	t.Setenv("REENGAGE_SALESFORCE_USERNAME", "ops@fund.vc")
	t.Setenv("REENGAGE_SALESFORCE_KEY_PATH", "/etc/reengage/sf.pem")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-test", cfg.Anthropic.Key)
	assert.Equal(t, "sk-test", cfg.OpenAI.Key)
	assert.Equal(t, "ya29.test", cfg.Gmail.AccessToken)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "secret_test", cfg.Notion.Token)
	assert.Equal(t, "db-id", cfg.Notion.PlanDB)
	assert.Equal(t, "consumer-key", cfg.Salesforce.ClientID)
	assert.Equal(t, "ops@fund.vc", cfg.Salesforce.Username)
	assert.Equal(t, "/etc/reengage/sf.pem", cfg.Salesforce.KeyPath)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}

package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFiles_Defaults(t *testing.T) {
	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 8085, config.Server.Port)
	assert.Equal(t, LLMProviderGemini, config.LLM.Provider)
	assert.Equal(t, 0.6, config.Engine.MinConfidence)
	assert.Equal(t, 0.85, config.Engine.CacheSimilarity)
	assert.Equal(t, 0.5, config.Engine.RelevanceMinScore)
	assert.Equal(t, 6, config.Engine.TopK)
	assert.Equal(t, 768, config.Gemini.EmbedDimension)
	assert.True(t, config.WebSearch.Enabled)
}

func TestLoadFromFiles_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "careermatch.toml")
	content := `
[server]
port = 9090

[llm]
provider = "claude"

[engine]
min_confidence = 0.75
top_k = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, LLMProviderClaude, config.LLM.Provider)
	assert.Equal(t, 0.75, config.Engine.MinConfidence)
	assert.Equal(t, 3, config.Engine.TopK)

	// Untouched sections keep their defaults
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 0.85, config.Engine.CacheSimilarity)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.toml")
	second := filepath.Join(dir, "second.toml")
	require.NoError(t, os.WriteFile(first, []byte("[server]\nport = 9001\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("[server]\nport = 9002\n"), 0644))

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, 9002, config.Server.Port)
}

func TestLoadFromFiles_MissingFileSkipped(t *testing.T) {
	config, err := LoadFromFiles("/nonexistent/careermatch.toml")
	require.NoError(t, err)
	assert.Equal(t, 8085, config.Server.Port)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")
	t.Setenv("CAREERMATCH_PORT", "7070")
	t.Setenv("CAREERMATCH_LOG_LEVEL", "debug")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "env-gemini-key", config.Gemini.APIKey)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromFiles_InvalidProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[llm]\nprovider = \"openai\"\n"), 0644))

	_, err := LoadFromFiles(path)
	assert.Error(t, err)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := DefaultConfig()

	ApplyFlagOverrides(config, 9999, "127.0.0.1")
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)

	// Zero values leave the config untouched
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
}

func TestEngineConfigDurations(t *testing.T) {
	engine := &EngineConfig{SourceTimeout: "45s", CacheTTL: "24h"}
	assert.Equal(t, 45*time.Second, engine.SourceTimeoutDuration())
	assert.Equal(t, 24*time.Hour, engine.CacheTTLDuration())

	// Unparseable values fall back to defaults
	broken := &EngineConfig{SourceTimeout: "soon", CacheTTL: "forever"}
	assert.Equal(t, 20*time.Second, broken.SourceTimeoutDuration())
	assert.Equal(t, 720*time.Hour, broken.CacheTTLDuration())

	// Zero TTL disables expiry
	disabled := &EngineConfig{CacheTTL: "0"}
	assert.Equal(t, time.Duration(0), disabled.CacheTTLDuration())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.NoError(t, cfg.RequireToken())
	assert.Equal(t, "data/datastore.json", cfg.StoragePath)
	assert.Equal(t, 2000, cfg.PostChunkSize)
	assert.Equal(t, 8191, cfg.ShinyOdds)
	assert.Equal(t, "deepseek-chat", cfg.AIModel)
}

func TestNewReadsKeyFiles(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "ai.txt")
	require.NoError(t, os.WriteFile(keyPath, []byte("  secret-key\n"), 0o600))

	t.Setenv("AI_API_KEY_FILE", keyPath)
	t.Setenv("DISCORD_GUILD_BLACKLIST", "1,2")
	t.Setenv("DEVELOPER_ID", "42")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.AIKey)
	assert.True(t, cfg.IsGuildBlacklisted("2"))
	assert.False(t, cfg.IsGuildBlacklisted("3"))
	assert.True(t, cfg.IsDeveloper("42"))
	assert.False(t, cfg.IsDeveloper(""))
}

func TestNewRejectsBadChunkSize(t *testing.T) {
	t.Setenv("POST_CHUNK_SIZE", "0")

	_, err := New()
	assert.Error(t, err)
}

func TestRequireTokenWhenUnset(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_TOKEN_FILE", "")

	cfg, err := New()
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.RequireToken(), ErrMissingToken)

	path := filepath.Join(t.TempDir(), "token.txt")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
	t.Setenv("DISCORD_TOKEN_FILE", path)

	cfg, err = New()
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireToken())
	assert.Equal(t, "from-file", cfg.DiscordToken)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "larder", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "larder.db", cfg.Database.Path)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.TextModel)
	assert.Equal(t, 20, cfg.AI.RequestsPerMinute)
	assert.Equal(t, 5, cfg.Import.MaxPhotos)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LARDER_SERVER_PORT", "9090")
	t.Setenv("LARDER_APP_ENVIRONMENT", "production")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 8080
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.Path = "larder.db"
	cfg.AI.RequestsPerMinute = 0
	assert.Error(t, cfg.Validate())
}

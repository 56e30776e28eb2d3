package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "CONSUMERS ENERGY", cfg.PowerCompany)
	assert.Equal(t, 3.0, cfg.SpanTolerance)
	assert.Contains(t, cfg.ProviderNames(), "Comcast")
	assert.Contains(t, cfg.IgnoreSCIDKeywords, "FOREIGN")
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.PowerCompany = "DTE ENERGY"
	cfg.SpanTolerance = 5
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DTE ENERGY", loaded.PowerCompany)
	assert.Equal(t, 5.0, loaded.SpanTolerance)
	// untouched fields keep defaults
	assert.NotEmpty(t, loaded.CommKeywords)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.PowerCompany = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Providers = append(cfg.Providers, ProviderRule{Name: "Comcast"})
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SpanTolerance = -1
	assert.Error(t, cfg.Validate())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/peerpin/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))
	return root
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvVersion, "")
	t.Setenv(EnvDebug, "")
	t.Setenv(EnvInstallCommand, "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, []string{"configs"}, cfg.ConfigDirs)
	assert.Equal(t, []string{"pack-package", "publish-packed-package"}, cfg.RequiredScripts)
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvVersion, "")
	t.Setenv(EnvDebug, "")
	t.Setenv(EnvInstallCommand, "")

	root := writeConfig(t, `
config_dirs = ["configs", "tooling"]
required_scripts = ["pack-package"]
install_command = ["pnpm", "install", "--frozen-lockfile=false"]
max_passes = 3
`)
	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"configs", "tooling"}, cfg.ConfigDirs)
	assert.Equal(t, []string{"pack-package"}, cfg.RequiredScripts)
	assert.Equal(t, []string{"pnpm", "install", "--frozen-lockfile=false"}, cfg.InstallCommand)
	assert.Equal(t, 3, cfg.MaxPasses)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv(EnvVersion, "3.1.0")
	t.Setenv(EnvDebug, "*")
	t.Setenv(EnvInstallCommand, "npm install --no-audit")

	cfg, err := Load(writeConfig(t, `version = "1.0.0"`))
	require.NoError(t, err)
	assert.Equal(t, "3.1.0", cfg.Version, "environment wins over the file")
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"npm", "install", "--no-audit"}, cfg.InstallCommand)
}

func TestDebugEnvironmentValues(t *testing.T) {
	tests := map[string]bool{"1": true, "true": true, "app:*": true, "0": false, "false": false}
	for v, want := range tests {
		t.Run(v, func(t *testing.T) {
			cfg := Default()
			cfg.applyEnv(func(key string) (string, bool) {
				if key == EnvDebug {
					return v, true
				}
				return "", false
			})
			assert.Equal(t, want, cfg.Debug)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvVersion, "")

	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", `config_dirs = [`, errors.ErrCodeInvalidConfig},
		{"unknown key", `colour = "blue"`, errors.ErrCodeInvalidConfig},
		{"bad version", `version = "v1"`, errors.ErrCodeInvalidVersion},
		{"zero passes", `max_passes = 0`, errors.ErrCodeInvalidConfig},
		{"escaping config dir", `config_dirs = ["../shared"]`, errors.ErrCodeInvalidConfig},
		{"empty script", `required_scripts = [""]`, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "err = %v", err)
		})
	}
}

func TestOverride(t *testing.T) {
	cfg := Default()
	version, debug, passes := "2.0.0", true, 7
	require.NoError(t, cfg.Override(Overrides{Version: &version, Debug: &debug, MaxPasses: &passes}))
	assert.Equal(t, "2.0.0", cfg.Version)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 7, cfg.MaxPasses)

	bad := "2.0"
	err := cfg.Override(Overrides{Version: &bad})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidVersion))
}

func TestEnforceOptions(t *testing.T) {
	cfg := Default()
	cfg.Version = "1.2.3"
	cfg.RequiredScripts = nil

	opts := cfg.EnforceOptions()
	assert.Equal(t, "1.2.3", opts.Version)
	assert.Equal(t, []string{"configs"}, opts.ConfigDirs)
	assert.NotNil(t, opts.RequiredScripts, "an empty script list disables the rule instead of restoring defaults")
	assert.Empty(t, opts.RequiredScripts)
}

// Package config loads peerpin settings.
//
// Settings come from three layers, later ones winning:
//
//  1. .peerpin.toml at the workspace root
//  2. environment variables (PACKAGES_VERSION, DEBUG, PEERPIN_INSTALL_COMMAND)
//  3. command-line flags, applied by the caller with [Config.Override]
//
// A missing file is not an error; every field has a default.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/peerpin/pkg/constraints"
	"github.com/matzehuels/peerpin/pkg/errors"
)

// FileName is the config file looked up at the workspace root.
const FileName = ".peerpin.toml"

// Environment variables.
const (
	EnvVersion        = "PACKAGES_VERSION"
	EnvDebug          = "DEBUG"
	EnvInstallCommand = "PEERPIN_INSTALL_COMMAND"
)

// DefaultInstallCommand re-syncs node_modules after manifests change.
var DefaultInstallCommand = []string{"yarn", "install"}

// Config holds the resolved settings.
type Config struct {
	// ConfigDirs are the directory prefixes of configuration workspaces.
	ConfigDirs []string `toml:"config_dirs"`

	// RequiredScripts must be defined by every public workspace.
	RequiredScripts []string `toml:"required_scripts"`

	// InstallCommand runs after `fix --install`, as argv.
	InstallCommand []string `toml:"install_command"`

	// MaxPasses bounds fixed-point enforcement.
	MaxPasses int `toml:"max_passes"`

	// Version, when set, switches to version mode.
	Version string `toml:"version"`

	// Debug dumps aggregated requirements while enforcing.
	Debug bool `toml:"debug"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ConfigDirs:      []string{constraints.DefaultConfigDir},
		RequiredScripts: slices.Clone(constraints.DefaultScripts),
		InstallCommand:  slices.Clone(DefaultInstallCommand),
		MaxPasses:       constraints.DefaultMaxPasses,
	}
}

// Load reads root/.peerpin.toml over the defaults and applies the environment.
func Load(root string) (Config, error) {
	cfg := Default()

	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvVersion); ok && v != "" {
		c.Version = v
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		// DEBUG is commonly set to a namespace list ("*", "app:*"); anything
		// that is not an explicit false turns debugging on.
		b, err := strconv.ParseBool(v)
		c.Debug = err != nil || b
	}
	if v, ok := lookup(EnvInstallCommand); ok && strings.TrimSpace(v) != "" {
		c.InstallCommand = strings.Fields(v)
	}
}

// Overrides are flag values; nil fields leave the setting unchanged.
type Overrides struct {
	Version   *string
	Debug     *bool
	MaxPasses *int
}

// Override applies flag values and revalidates.
func (c *Config) Override(o Overrides) error {
	if o.Version != nil {
		c.Version = *o.Version
	}
	if o.Debug != nil {
		c.Debug = *o.Debug
	}
	if o.MaxPasses != nil {
		c.MaxPasses = *o.MaxPasses
	}
	return c.Validate()
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.Version != "" {
		if _, err := semver.StrictNewVersion(c.Version); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid version %q", c.Version)
		}
	}
	if c.MaxPasses < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_passes must be at least 1, got %d", c.MaxPasses)
	}
	for _, dir := range c.ConfigDirs {
		if err := errors.ValidatePath(dir); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "config_dirs")
		}
	}
	for _, s := range c.RequiredScripts {
		if strings.TrimSpace(s) == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "required_scripts contains an empty name")
		}
	}
	return nil
}

// EnforceOptions maps the settings onto enforcer options.
func (c Config) EnforceOptions() constraints.Options {
	return constraints.Options{
		Version:         c.Version,
		ConfigDirs:      slices.Clone(c.ConfigDirs),
		RequiredScripts: append([]string{}, c.RequiredScripts...),
		Debug:           c.Debug,
	}
}

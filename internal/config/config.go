package config

import (
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
)

const (
	// EnvPrefix prefixes every environment override, e.g. VIAL_LOG_LEVEL.
	EnvPrefix = "VIAL"

	// FileName is the optional config file looked up next to the resources.
	FileName = "vial.toml"
)

// Identity is registered with the GUI runtime once, when the application is constructed.
type Identity struct {
	Name               string `toml:"name"`
	OrganizationDomain string `toml:"organization_domain"`
	Version            string `toml:"version"`
}

// ID derives the reverse-domain application ID used for the settings storage path.
func (i Identity) ID() string {
	parts := strings.Split(strings.Trim(i.OrganizationDomain, "."), ".")
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	if name := strings.ToLower(strings.ReplaceAll(i.Name, " ", "")); name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, ".")
}

// LogConfig controls the process-wide logger.
type LogConfig struct {
	Level      string `env:"LEVEL" toml:"level"`
	File       string `env:"FILE" toml:"file"`
	MaxBackups int    `env:"MAX_BACKUPS" toml:"max_backups"`
	MaxAge     int    `env:"MAX_AGE" toml:"max_age"`
}

// SentryConfig enables the crash reporter when DSN is set.
type SentryConfig struct {
	DSN         string `env:"DSN" toml:"dsn"`
	Environment string `env:"ENVIRONMENT" toml:"environment"`
}

// Config defines startup parameters for the application.
type Config struct {
	Identity Identity     `env:"IDENTITY" toml:"identity"`
	IconPath string       `env:"ICON" toml:"icon"`
	CABundle string       `env:"CA_BUNDLE" toml:"ca_bundle"`
	Log      LogConfig    `env:"LOG" toml:"log"`
	Sentry   SentryConfig `env:"SENTRY" toml:"sentry"`
}

// DefaultConfig returns the configuration the application ships with.
func DefaultConfig() *Config {
	return &Config{
		Identity: Identity{
			Name:               "Vial",
			OrganizationDomain: "vial.today",
			Version:            "0.7.x-ilc",
		},
		IconPath: "icons/icon.ico",
		CABundle: "certs/cacert.pem",
		Log: LogConfig{
			Level:      "info",
			MaxBackups: 4,
			MaxAge:     28,
		},
		Sentry: SentryConfig{
			Environment: "production",
		},
	}
}

// Load overlays the optional TOML file at path and VIAL_* environment variables onto the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var files []string
	if path != "" {
		files = []string{path}
	}

	loader := aconfig.LoaderFor(cfg, aconfig.Config{
		SkipDefaults:       true,
		SkipFlags:          true,
		EnvPrefix:          EnvPrefix,
		AllowUnknownEnvs:   true,
		AllowUnknownFields: true,
		Files:              files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	return cfg, nil
}

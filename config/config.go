// ABOUTME: Application settings loaded from YAML, DOFO_* env vars, and .env
// ABOUTME: Paths default to XDG locations when not configured

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/urgency"
)

// AppName names the XDG subdirectories.
const AppName = "dofo"

// Config is the root application configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Web     WebConfig     `yaml:"web"`
	Urgency UrgencyConfig `yaml:"urgency"`
	Log     LogConfig     `yaml:"log"`
	Sync    SyncConfig    `yaml:"sync"`
	Google  GoogleConfig  `yaml:"google"`
}

// PathsConfig locates on-disk data. Empty values are filled from XDG.
type PathsConfig struct {
	DBPath   string `yaml:"db_path"   env:"DOFO_DB_PATH"`
	StateDir string `yaml:"state_dir" env:"DOFO_STATE_DIR"`
}

// WebConfig holds the dashboard listener settings.
type WebConfig struct {
	Host string `yaml:"host" env:"DOFO_WEB_HOST" env-default:"127.0.0.1"`
	Port int    `yaml:"port" env:"DOFO_WEB_PORT" env-default:"8080"`
}

// Addr is host:port for net/http.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// UrgencyConfig tunes the urgency evaluator.
type UrgencyConfig struct {
	MilestoneWindowDays int    `yaml:"milestone_window_days" env:"DOFO_MILESTONE_WINDOW" env-default:"7"`
	DefaultCadence      string `yaml:"default_cadence"       env:"DOFO_DEFAULT_CADENCE"  env-default:"monthly"`
}

// Policy is the urgency policy these settings describe.
func (u UrgencyConfig) Policy() urgency.Policy {
	return urgency.NewPolicy(u.MilestoneWindowDays, u.DefaultCadence)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"DOFO_LOG_LEVEL" env-default:"warn"`
}

// SyncConfig picks the state backend. Disabled means local badger only.
type SyncConfig struct {
	Enabled   bool   `yaml:"enabled"    env:"DOFO_SYNC"`
	CharmHost string `yaml:"charm_host" env:"DOFO_CHARM_HOST"`
}

// GoogleConfig holds OAuth client credentials for `dofo connect google`.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"     env:"DOFO_GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"DOFO_GOOGLE_CLIENT_SECRET"`
}

// Load reads .env, then the YAML file named by DOFO_CONFIG (fallback
// $XDG_CONFIG_HOME/dofo/config.yaml), then environment variables.
// Priority: ENV > YAML > defaults. A missing default file is not an error.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	path := os.Getenv("DOFO_CONFIG")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
	}
	return load(path, explicit)
}

func load(path string, explicit bool) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	cfg.applyPathDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyPathDefaults() {
	if c.Paths.DBPath == "" {
		c.Paths.DBPath = filepath.Join(xdg.DataHome, AppName, "dofo.db")
	}
	if c.Paths.StateDir == "" {
		c.Paths.StateDir = filepath.Join(xdg.DataHome, AppName, "state")
	}
}

// CredentialsDir is where OAuth tokens are stored.
func (c *Config) CredentialsDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks value ranges and cross-field rules.
func (c *Config) Validate() error {
	var errs []error

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web.port %d out of range", c.Web.Port))
	}
	if c.Urgency.MilestoneWindowDays < 1 || c.Urgency.MilestoneWindowDays > 365 {
		errs = append(errs, fmt.Errorf("urgency.milestone_window_days %d must be between 1 and 365", c.Urgency.MilestoneWindowDays))
	}
	if !slices.Contains(models.Frequencies, c.Urgency.DefaultCadence) {
		errs = append(errs, fmt.Errorf("urgency.default_cadence %q is not a known frequency", c.Urgency.DefaultCadence))
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}
	if (c.Google.ClientID == "") != (c.Google.ClientSecret == "") {
		errs = append(errs, errors.New("google.client_id and google.client_secret must be set together"))
	}

	return errors.Join(errs...)
}

// Package config loads the tool's settings from an env file, the process
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of every environment variable except the token.
	EnvPrefix = "CGMANIFEST"

	DefaultEnvFile   = ".env"
	DefaultOrg       = "microsoft"
	DefaultSchemaURL = "https://json.schemastore.org/component-detection-manifest.json"
	DefaultBranch    = "cgmanifest-schema"
	DefaultTitle     = "Add $schema to cgmanifest.json"
	DefaultManifest  = "cgmanifest.json"
)

// ErrMissingToken is returned when no GitHub token is configured.
var ErrMissingToken = errors.New("GITHUB_TOKEN environment variable is not set")

// Config holds every setting shared by the commands.
type Config struct {
	Token         string `mapstructure:"github_token"`
	Org           string `mapstructure:"org"`
	TrackOwner    string `mapstructure:"track_owner"`
	SchemaURL     string `mapstructure:"schema_url"`
	Branch        string `mapstructure:"branch"`
	Title         string `mapstructure:"title"`
	CommitMessage string `mapstructure:"commit_message"`
	AuthorName    string `mapstructure:"author_name"`
	AuthorEmail   string `mapstructure:"author_email"`
	Manifest      string `mapstructure:"manifest"`
	BodyFile      string `mapstructure:"body_file"`
	Concurrency   int    `mapstructure:"concurrency"`
	FailFast      bool   `mapstructure:"fail_fast"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
}

// Owner returns the account whose pull requests are tracked.
func (c *Config) Owner() string {
	if c.TrackOwner != "" {
		return c.TrackOwner
	}
	return c.Org
}

var defaults = map[string]any{
	"org":            DefaultOrg,
	"track_owner":    "",
	"schema_url":     DefaultSchemaURL,
	"branch":         DefaultBranch,
	"title":          DefaultTitle,
	"commit_message": DefaultTitle,
	"author_name":    "cgmanifest-schema",
	"author_email":   "cgmanifest-schema@users.noreply.github.com",
	"manifest":       DefaultManifest,
	"body_file":      "",
	"concurrency":    1,
	"fail_fast":      true,
	"log_level":      "info",
	"log_format":     "console",
}

// flagNames maps configuration keys to the flags that override them.
var flagNames = map[string]string{
	"org":         "org",
	"track_owner": "owner",
	"schema_url":  "schema-url",
	"branch":      "branch",
	"title":       "title",
	"manifest":    "manifest",
	"body_file":   "body-file",
	"concurrency": "concurrency",
	"log_level":   "log-level",
	"log_format":  "log-format",
}

// RegisterFlags adds the configuration flags to flagSet.
func RegisterFlags(flagSet *pflag.FlagSet) {
	flagSet.StringP("org", "o", DefaultOrg, "GitHub organization to search for manifests")
	flagSet.String("owner", "", "Owner whose pull requests are tracked (defaults to --org)")
	flagSet.String("schema-url", DefaultSchemaURL, "Value written to the $schema field")
	flagSet.String("branch", DefaultBranch, "Name of the maintenance branch created on each fork")
	flagSet.String("title", DefaultTitle, "Pull request title used to create and find pull requests")
	flagSet.String("manifest", DefaultManifest, "Manifest file name to search for")
	flagSet.String("body-file", "", "Markdown file used as the pull request body")
	flagSet.Int("concurrency", 1, "Number of repositories processed at the same time")
	flagSet.Bool("continue-on-error", false, "Keep processing other repositories when one fails")
	flagSet.String("log-level", "info", "Log level (debug, info, warn, error)")
	flagSet.String("log-format", "console", "Log format (console, json)")
	flagSet.String("env-file", DefaultEnvFile, "Env file loaded before the process environment")
}

// Load resolves the configuration. Precedence is flags, then process
// environment, then the env file, then defaults. A missing env file is only
// an error when it was requested explicitly with --env-file.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github_token", "GITHUB_TOKEN", "GH_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind token environment: %w", err)
	}

	envFile, envFileRequired := DefaultEnvFile, false
	if flags != nil {
		if f := flags.Lookup("env-file"); f != nil {
			envFile, envFileRequired = f.Value.String(), f.Changed
		}
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	settings, err := readEnvFile(envFile, envFileRequired)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("failed to merge env file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if flags != nil {
		if continueOnError, err := flags.GetBool("continue-on-error"); err == nil && continueOnError {
			cfg.FailFast = false
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	if c.Org == "" {
		return errors.New("organization must not be empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// readEnvFile reads a dotenv file and returns its entries keyed by
// configuration key. Unknown variables are ignored.
func readEnvFile(path string, required bool) (map[string]any, error) {
	settings := map[string]any{}
	if path == "" {
		return settings, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	prefix := strings.ToLower(EnvPrefix) + "_"
	for key, value := range v.AllSettings() {
		switch {
		case key == "github_token":
			settings["github_token"] = value
		case key == "gh_token":
			if _, ok := settings["github_token"]; !ok {
				settings["github_token"] = value
			}
		case strings.HasPrefix(key, prefix):
			settings[strings.TrimPrefix(key, prefix)] = value
		}
	}
	return settings, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

// PATEnv is the environment variable holding the Azure DevOps personal
// access token. The token is read once at startup and never written to
// config, logs, or terminal output.
const PATEnv = "AZURE_DEVOPS_PAT"

type Config struct {
	Azure    AzureConfig    `toml:"azure"`
	Branches BranchesConfig `toml:"branches"`
	Tickets  TicketsConfig  `toml:"tickets"`
	Title    TitleConfig    `toml:"title"`

	// Compiled regex from Tickets.Prefix (not serialized)
	ticketRegex *regexp.Regexp
}

type AzureConfig struct {
	OrgURL     string `toml:"org_url"`
	Project    string `toml:"project"`
	Repository string `toml:"repository"`
}

type BranchesConfig struct {
	DefaultTarget string `toml:"default_target"`
	SyncSource    string `toml:"sync_source"`
	SyncTarget    string `toml:"sync_target"`
}

type TicketsConfig struct {
	Prefix         string `toml:"prefix"`
	TrackerBaseURL string `toml:"tracker_base_url"`
	SyncTicket     string `toml:"sync_ticket"`
}

type TitleConfig struct {
	OrgTag string `toml:"org_tag"`
}

func DefaultConfig() *Config {
	return &Config{
		Azure: AzureConfig{
			OrgURL:     "https://mpcoderepo.visualstudio.com",
			Project:    "DigitalExperience",
			Repository: "aemaacs-life",
		},
		Branches: BranchesConfig{
			DefaultTarget: "dev",
			SyncSource:    "master",
			SyncTarget:    "dev",
		},
		Tickets: TicketsConfig{
			Prefix:         "ADW",
			TrackerBaseURL: "https://mandg.atlassian.net/browse",
			SyncTicket:     "ADW-1245",
		},
		Title: TitleConfig{
			OrgTag: "Merkle",
		},
	}
}

func configPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "adopr.toml"), nil
}

func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		cfg := DefaultConfig()
		if err := cfg.compileRegex(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if err := cfg.compileRegex(); err != nil {
				return nil, err
			}
			_ = cfg.Save() // Best effort save
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.compileRegex(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) compileRegex() error {
	if c.Tickets.Prefix == "" {
		return errors.New("tickets.prefix must not be empty")
	}
	re, err := regexp.Compile("(?i)(" + regexp.QuoteMeta(c.Tickets.Prefix) + `-[0-9]+)`)
	if err != nil {
		return fmt.Errorf("invalid tickets.prefix %q: %w", c.Tickets.Prefix, err)
	}
	c.ticketRegex = re
	return nil
}

// TicketRegex returns the compiled ticket id regex built from Tickets.Prefix
func (c *Config) TicketRegex() *regexp.Regexp {
	return c.ticketRegex
}

func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Token reads the personal access token from the environment.
func Token() (string, error) {
	token := os.Getenv(PATEnv)
	if token == "" {
		return "", fmt.Errorf("%s environment variable not set; export %s='your_token_here'", PATEnv, PATEnv)
	}
	return token, nil
}

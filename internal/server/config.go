package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server Settings `hcl:"server,block"`
}

// Settings contains the tunables for a tournament server.
type Settings struct {
	Address        string `hcl:"address,optional"`
	Port           int    `hcl:"port,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	MinPlayers     int    `hcl:"min_players,optional"`
	MaxPlayers     int    `hcl:"max_players,optional"`
	StartingStack  int    `hcl:"starting_stack,optional"`
	ActionTimeout  int    `hcl:"action_timeout_seconds,optional"`
	LobbyWait      int    `hcl:"lobby_wait_seconds,optional"`
	JoinTimeout    int    `hcl:"join_timeout_seconds,optional"`
	Seed           int64  `hcl:"seed,optional"`
}

// DefaultConfig returns the stock tournament configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: Settings{
			Address:       "localhost",
			Port:          8765,
			LogLevel:      "info",
			MinPlayers:    2,
			MaxPlayers:    9,
			StartingStack: 10000,
			ActionTimeout: 30,
			LobbyWait:     5,
			JoinTimeout:   10,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist. Unset fields take their default values.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig().Server
	s := &config.Server
	if s.Address == "" {
		s.Address = defaults.Address
	}
	if s.Port == 0 {
		s.Port = defaults.Port
	}
	if s.LogLevel == "" {
		s.LogLevel = defaults.LogLevel
	}
	if s.MinPlayers == 0 {
		s.MinPlayers = defaults.MinPlayers
	}
	if s.MaxPlayers == 0 {
		s.MaxPlayers = defaults.MaxPlayers
	}
	if s.StartingStack == 0 {
		s.StartingStack = defaults.StartingStack
	}
	if s.ActionTimeout == 0 {
		s.ActionTimeout = defaults.ActionTimeout
	}
	if s.LobbyWait == 0 {
		s.LobbyWait = defaults.LobbyWait
	}
	if s.JoinTimeout == 0 {
		s.JoinTimeout = defaults.JoinTimeout
	}

	return &config, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid port: %d", s.Port)
	}
	if s.MinPlayers < 2 {
		return fmt.Errorf("min_players must be at least 2, got %d", s.MinPlayers)
	}
	if s.MaxPlayers > 9 {
		return fmt.Errorf("max_players must be at most 9, got %d", s.MaxPlayers)
	}
	if s.MinPlayers > s.MaxPlayers {
		return fmt.Errorf("min_players %d exceeds max_players %d", s.MinPlayers, s.MaxPlayers)
	}
	if s.StartingStack <= 0 {
		return fmt.Errorf("starting_stack must be positive, got %d", s.StartingStack)
	}
	if s.ActionTimeout <= 0 {
		return fmt.Errorf("action_timeout_seconds must be positive, got %d", s.ActionTimeout)
	}
	if s.LobbyWait <= 0 {
		return fmt.Errorf("lobby_wait_seconds must be positive, got %d", s.LobbyWait)
	}
	if s.JoinTimeout <= 0 {
		return fmt.Errorf("join_timeout_seconds must be positive, got %d", s.JoinTimeout)
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// ActionTimeoutDuration returns the per-decision deadline as a duration.
func (s Settings) ActionTimeoutDuration() time.Duration {
	return time.Duration(s.ActionTimeout) * time.Second
}

// LobbyWaitDuration returns the lobby start debounce as a duration.
func (s Settings) LobbyWaitDuration() time.Duration {
	return time.Duration(s.LobbyWait) * time.Second
}

// JoinTimeoutDuration returns the first-frame deadline as a duration.
func (s Settings) JoinTimeoutDuration() time.Duration {
	return time.Duration(s.JoinTimeout) * time.Second
}

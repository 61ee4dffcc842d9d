// Package config loads runtime settings for the gophnotes terminal client.
//
// Sources, later ones winning:
//
//  1. built-in defaults (LoadDefaults)
//  2. optional JSON file given with -c or -config
//  3. command-line flags
//
// Flags:
//
//	-a string   base URL of the notes API
//	-s string   path of the local session database
//	-t int      per-request timeout (seconds)
//	-ephemeral  keep the session in memory only
//	-l string   log level: debug, info, warn or error
//
// JSON example:
//
//	{
//	  "server_base_url": "http://localhost:8000",
//	  "session_db_path": "notes_session.db",
//	  "request_timeout": "10s",
//	  "log_level": "warn"
//	}
package config

import (
	"os"
	"time"
)

type Config struct {
	ServerBaseURL  string
	SessionDBPath  string
	RequestTimeout time.Duration
	Ephemeral      bool
	LogLevel       string
}

// LoadDefaults matches the API address the web frontend talks to.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8000"
	c.SessionDBPath = "notes_session.db"
	c.RequestTimeout = 10 * time.Second
	c.Ephemeral = false
	c.LogLevel = "warn"
}

// LoadConfig builds a Config from defaults, the JSON file and os.Args.
func LoadConfig() *Config {
	return LoadConfigFromArgs(os.Args[1:])
}

// LoadConfigFromArgs is LoadConfig with an explicit argument list.
// It panics on an unreadable config file or malformed flags.
func LoadConfigFromArgs(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}

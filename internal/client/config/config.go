package config

import "time"

// Config holds runtime settings for the FitMacro CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - SessionFile: path of the local SQLite file keeping the login session.
//   - RequestTimeout: deadline applied to every call to the server.
//   - ChartDays: number of days drawn by the "chart" command.
type Config struct {
	ServerEndpointAddr string
	SessionFile        string
	RequestTimeout     time.Duration
	ChartDays          int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionFile = "fitmacro.db"
	c.RequestTimeout = 5 * time.Second
	c.ChartDays = 14
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

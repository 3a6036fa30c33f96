// Package config loads runtime configuration for the FitMacro CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-s string   local session database file
//	-t int      request timeout (seconds)
//	-n int      days shown by the chart command
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "session_file": "fitmacro.db",
//	  "request_timeout": "5s",
//	  "chart_days": 14
//	}
package config

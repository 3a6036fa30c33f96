package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/flagx"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so they can be written as "5s" or as integer nanoseconds.
// Absent fields leave the current value untouched.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	SessionFile        string          `json:"session_file"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	ChartDays          int             `json:"chart_days"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c or -config flag. Without the flag nothing is loaded. Read and
// unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.SessionFile != "" {
		cfg.SessionFile = jc.SessionFile
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.ChartDays > 0 {
		cfg.ChartDays = jc.ChartDays
	}
}

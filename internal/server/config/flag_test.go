package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		base        Config
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:8081", "-grpc", "127.0.0.1:9090", "-d", "db", "-s", "secret",
			"-t", "1", "-r", "3", "-l", "debug", "-f", "http://off",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		},
			expected: &Config{
				HTTPAddr:                     "127.0.0.1:8081",
				GRPCAddr:                     "127.0.0.1:9090",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				LogLevel:                     "debug",
				FoodAPIBaseURL:               "http://off",
				S3RootUser:                   "user",
				S3RootPassword:               "password",
				S3Bucket:                     "bucket",
				S3Region:                     "us-west-1",
				S3BaseEndpoint:               "http://endpoint",
			}},
		{name: "unset duration flags keep sub-minute values", args: []string{"cmd", "-d", "db"},
			base:     Config{AccessTokenValidityDuration: 30 * time.Second},
			expected: &Config{DatabaseDSN: "db", AccessTokenValidityDuration: 30 * time.Second}},
		{name: "bad number panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := tt.base

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(&config) })
				assert.Empty(t, cmp.Diff(tt.expected, &config))
			} else {
				require.Panics(t, func() { parseFlags(&config) })
			}
		})
	}
}

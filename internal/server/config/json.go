package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/flagx"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "8s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. Zero values are treated as "not set".
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	GRPCAddr                     string         `json:"grpc_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	LogLevel                     string         `json:"log_level"`
	FoodAPIBaseURL               string         `json:"food_api_base_url"`
	FoodAPITimeout               timex.Duration `json:"food_api_timeout"`
	FoodAPIUserAgent             string         `json:"food_api_user_agent"`
	FoodAPICountry               string         `json:"food_api_country"`
	FoodAPICacheTTL              timex.Duration `json:"food_api_cache_ttl"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	TrendWindowDays              int            `json:"trend_window_days"`
	DashboardDays                int            `json:"dashboard_days"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag into config. Without the flag nothing is loaded.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.FoodAPIBaseURL, c.FoodAPIBaseURL)
	setDuration(&config.FoodAPITimeout, c.FoodAPITimeout)
	setString(&config.FoodAPIUserAgent, c.FoodAPIUserAgent)
	setString(&config.FoodAPICountry, c.FoodAPICountry)
	setDuration(&config.FoodAPICacheTTL, c.FoodAPICacheTTL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.TrendWindowDays > 0 {
		config.TrendWindowDays = c.TrendWindowDays
	}
	if c.DashboardDays > 0 {
		config.DashboardDays = c.DashboardDays
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

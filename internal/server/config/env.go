package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "FITMACRO_"

// defaultEnvFile is read when present and no -env flag is given.
const defaultEnvFile = ".env"

// parseEnv overlays FITMACRO_* variables. Values come from the dotenv file
// (-env flag, or ./.env when it exists) and the process environment, the
// latter taking precedence. Malformed numbers or durations panic, as do
// unreadable files named explicitly with -env.
func parseEnv(config *Config) {
	vars := map[string]string{}

	file := flagx.EnvFileFlag()
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}
	fromFile, err := godotenv.Read(file)
	switch {
	case err == nil:
		vars = fromFile
	case explicit || !errors.Is(err, fs.ErrNotExist):
		panic(err)
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			return v, true
		}
		v, ok := vars[EnvPrefix+name]
		return v, ok
	}

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(err)
			}
			*dst = n
		}
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("GRPC_ADDR", &config.GRPCAddr)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	dur("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	dur("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	str("LOG_LEVEL", &config.LogLevel)
	str("FOOD_API_URL", &config.FoodAPIBaseURL)
	dur("FOOD_API_TIMEOUT", &config.FoodAPITimeout)
	str("FOOD_API_USER_AGENT", &config.FoodAPIUserAgent)
	str("FOOD_API_COUNTRY", &config.FoodAPICountry)
	dur("FOOD_API_CACHE_TTL", &config.FoodAPICacheTTL)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	num("TREND_WINDOW_DAYS", &config.TrendWindowDays)
	num("DASHBOARD_DAYS", &config.DashboardDays)
}

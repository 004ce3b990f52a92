package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
	"github.com/dmitrijs2005/notekeeper/internal/timex"
)

// ConfigEnvName names the environment variable consulted for the JSON config
// path when no -c/-config flag is given.
const ConfigEnvName = "NOTES_CONFIG"

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// strings such as "15m" or integer nanoseconds. Only keys present in the file
// override the current value.
type JsonConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	AuthProvider                 *string         `json:"auth_provider"`
	SupabaseURL                  *string         `json:"supabase_url"`
	SupabaseKey                  *string         `json:"supabase_key"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	AIProvider                   *string         `json:"ai_provider"`
	AIAPIKey                     *string         `json:"ai_api_key"`
	AIModel                      *string         `json:"ai_model"`
	AIBaseURL                    *string         `json:"ai_base_url"`
	CORSOrigin                   *string         `json:"cors_origin"`
	LogLevel                     *string         `json:"log_level"`
	LogFormat                    *string         `json:"log_format"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// NOTES_CONFIG) onto config. Nothing happens when no file is named; an
// unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(ConfigEnvName)

	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AuthProvider, c.AuthProvider)
	setString(&config.SupabaseURL, c.SupabaseURL)
	setString(&config.SupabaseKey, c.SupabaseKey)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AIProvider, c.AIProvider)
	setString(&config.AIAPIKey, c.AIAPIKey)
	setString(&config.AIModel, c.AIModel)
	setString(&config.AIBaseURL, c.AIBaseURL)
	setString(&config.CORSOrigin, c.CORSOrigin)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

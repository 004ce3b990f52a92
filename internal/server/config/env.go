package config

import (
	"os"
	"strings"
	"time"
)

// parseEnv overlays values from environment variables. Variable names follow
// the deployment conventions of the hosted stack (PORT, SUPABASE_URL,
// OPENROUTER_API_KEY, ...). Unset or empty variables are ignored, as are
// durations that fail to parse.
func parseEnv(config *Config) {
	if port := env("PORT"); port != "" {
		config.EndpointAddrHTTP = ":" + strings.TrimPrefix(port, ":")
	}
	lookup(&config.EndpointAddrHTTP, "ADDRESS")
	lookup(&config.EndpointAddrGRPC, "GRPC_ADDRESS")
	lookup(&config.DatabaseDSN, "DATABASE_DSN")
	lookup(&config.AuthProvider, "AUTH_PROVIDER")
	lookup(&config.SupabaseURL, "SUPABASE_URL")
	lookup(&config.SupabaseKey, "SUPABASE_KEY")
	lookup(&config.SecretKey, "JWT_SECRET")
	lookupDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	lookupDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	lookup(&config.AIProvider, "AI_PROVIDER")
	lookup(&config.AIModel, "AI_MODEL")
	lookup(&config.AIBaseURL, "AI_BASE_URL")
	lookup(&config.CORSOrigin, "CORS_ORIGIN")
	lookup(&config.LogLevel, "LOG_LEVEL")
	lookup(&config.LogFormat, "LOG_FORMAT")

	// The key variable depends on the provider picked above.
	switch config.AIProvider {
	case AIProviderGemini:
		lookup(&config.AIAPIKey, "GEMINI_API_KEY")
	default:
		lookup(&config.AIAPIKey, "OPENROUTER_API_KEY")
	}
	lookup(&config.AIAPIKey, "AI_API_KEY")
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func lookup(dst *string, name string) {
	if v := env(name); v != "" {
		*dst = v
	}
}

func lookupDuration(dst *time.Duration, name string) {
	v := env(name)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

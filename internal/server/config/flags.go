package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-g", "-d", "-p", "-su", "-sk", "-s", "-t", "-r", "-ai", "-k", "-m", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-g string   gRPC health bind address, empty to disable
//	-d string   PostgreSQL DSN or memory://
//	-p string   auth provider: local | supabase
//	-su string  Supabase project URL
//	-sk string  Supabase API key
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-ai string  AI provider: openrouter | gemini
//	-k string   AI provider API key
//	-m string   AI model identifier
//	-l string   log level
//
// os.Args is filtered through flagx.FilterArgs first so flags owned by other
// components (-c) do not cause parse errors.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AuthProvider, "p", config.AuthProvider, "auth provider (local|supabase)")
	fs.StringVar(&config.SupabaseURL, "su", config.SupabaseURL, "Supabase project URL")
	fs.StringVar(&config.SupabaseKey, "sk", config.SupabaseKey, "Supabase API key")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.AIProvider, "ai", config.AIProvider, "AI provider (openrouter|gemini)")
	fs.StringVar(&config.AIAPIKey, "k", config.AIAPIKey, "AI provider API key")
	fs.StringVar(&config.AIModel, "m", config.AIModel, "AI model")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}

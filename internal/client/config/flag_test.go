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
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd", "-s", "http://127.0.0.1:9090/api", "-f", "/tmp/s.db", "-t", "10"},
			expected: &Config{ServerURL: "http://127.0.0.1:9090/api", SessionFile: "/tmp/s.db", RequestTimeout: 10 * time.Second}},
		{name: "foreign flags are ignored", args: []string{"cmd", "-c", "cfg.json", "-s", "http://x/api"},
			expected: &Config{ServerURL: "http://x/api"}},
		{name: "incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

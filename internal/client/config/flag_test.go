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

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "http://shop:8080", "-h", "shop:50051", "-i", "10", "-t", "tok",
			"-m", "6", "-s", "2", "-n", "4", "-p", "/tmp/previews", "-y", "image/png, image/jpeg,", "-l", "debug",
		}, expectPanic: false,
			expected: &Config{
				ServerURL:           "http://shop:8080",
				HealthAddr:          "shop:50051",
				OnlineCheckInterval: 10 * time.Second,
				AccessToken:         "tok",
				MaxImages:           6,
				MaxFileBytes:        2 * megabyte,
				AllowedTypes:        []string{"image/png", "image/jpeg"},
				Concurrency:         4,
				PreviewDir:          "/tmp/previews",
				LogLevel:            "debug",
			}},
		{name: "incorrect check interval", args: []string{"cmd", "-a", "http://shop", "-i", "abc"}, expectPanic: true, expected: &Config{}},
		{name: "unrelated flags ignored", args: []string{"cmd", "-c", "cfg.json", "-z", "-i", "1"},
			expected: &Config{OnlineCheckInterval: time.Second}},
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

func TestParseFlags_KeepsByteLimitWithoutFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd"}

	cfg := &Config{MaxFileBytes: 1500}
	parseFlags(cfg)
	assert.Equal(t, int64(1500), cfg.MaxFileBytes)
}

func TestParseFlags_KeepsAllowedTypesWithoutFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-m", "3"}

	cfg := &Config{AllowedTypes: []string{"image/", "video/"}}
	parseFlags(cfg)
	assert.Equal(t, []string{"image/", "video/"}, cfg.AllowedTypes)
}

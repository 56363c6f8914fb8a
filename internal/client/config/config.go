package config

import (
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/upload/policy"
)

// Config holds runtime settings for the gallery CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API (destinations, listing images).
//   - HealthAddr: host:port of the gRPC health endpoint.
//   - OnlineCheckInterval: how often the client checks server reachability.
//   - AccessToken: seller bearer token; prompted for when empty.
//   - MaxImages: gallery size limit passed to the upload coordinator.
//   - MaxFileBytes: per-file size limit of the validation policy.
//   - AllowedTypes: media type prefixes the validation policy accepts.
//   - Concurrency: files processed in parallel within one batch.
//   - PreviewDir: where local previews of failed uploads are kept.
//   - RequestTimeout: timeout of a single HTTP request.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL           string
	HealthAddr          string
	OnlineCheckInterval time.Duration
	AccessToken         string
	MaxImages           int
	MaxFileBytes        int64
	AllowedTypes        []string
	Concurrency         int
	PreviewDir          string
	RequestTimeout      time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.HealthAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.MaxImages = 10
	c.MaxFileBytes = policy.DefaultMaxBytes
	c.AllowedTypes = append([]string(nil), policy.DefaultTypePrefixes...)
	c.Concurrency = 1
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

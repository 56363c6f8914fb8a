package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
	"github.com/dmitrijs2005/shopkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, non-zero values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	HealthAddr          string         `json:"health_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	AccessToken         string         `json:"access_token"`
	MaxImages           int            `json:"max_images"`
	MaxFileBytes        int64          `json:"max_file_bytes"`
	AllowedTypes        []string       `json:"allowed_types"`
	Concurrency         int            `json:"concurrency"`
	PreviewDir          string         `json:"preview_dir"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from -c or -config via flagx.JsonConfigFlags(). When
// neither is given nothing is loaded. Read or unmarshal errors panic
// (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
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

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.HealthAddr != "" {
		cfg.HealthAddr = jc.HealthAddr
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.AccessToken != "" {
		cfg.AccessToken = jc.AccessToken
	}
	if jc.MaxImages != 0 {
		cfg.MaxImages = jc.MaxImages
	}
	if jc.MaxFileBytes != 0 {
		cfg.MaxFileBytes = jc.MaxFileBytes
	}
	if len(jc.AllowedTypes) > 0 {
		cfg.AllowedTypes = jc.AllowedTypes
	}
	if jc.Concurrency != 0 {
		cfg.Concurrency = jc.Concurrency
	}
	if jc.PreviewDir != "" {
		cfg.PreviewDir = jc.PreviewDir
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}

// Package config loads runtime configuration for the shopkeeper gallery CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the server REST API
//	-h string   address:port of the server gRPC health endpoint
//	-i int      online status check interval (seconds)
//	-t string   access token (prompted for when empty)
//	-m int      maximum images per listing
//	-s int      maximum file size (megabytes)
//	-n int      files uploaded in parallel
//	-p string   directory for local previews (a temp dir when empty,
//	            in-memory previews when "memory")
//	-y string   comma separated media type prefixes to accept, e.g. "image/"
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "health_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "max_images": 10,
//	  "max_file_bytes": 5242880,
//	  "allowed_types": ["image/"],
//	  "concurrency": 2
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config

package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
)

const megabyte = 1024 * 1024

// parseFlags populates selected Config fields from command-line flags.
// See the package documentation for the list.
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-h", "-i", "-t", "-m", "-s", "-n", "-p", "-y", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server API")
	fs.StringVar(&cfg.HealthAddr, "h", cfg.HealthAddr, "address and port of the health endpoint")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.IntVar(&cfg.MaxImages, "m", cfg.MaxImages, "maximum images per listing")
	maxFileMB := fs.Int64("s", cfg.MaxFileBytes/megabyte, "maximum file size (in megabytes)")
	fs.IntVar(&cfg.Concurrency, "n", cfg.Concurrency, "files uploaded in parallel")
	fs.StringVar(&cfg.PreviewDir, "p", cfg.PreviewDir, "directory for local previews, or \"memory\"")
	defaultTypes := strings.Join(cfg.AllowedTypes, ",")
	allowedTypes := fs.String("y", defaultTypes, "comma separated media type prefixes to accept")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	if *allowedTypes != defaultTypes {
		cfg.AllowedTypes = flagx.SplitList(*allowedTypes)
	}
	if *maxFileMB != cfg.MaxFileBytes/megabyte {
		cfg.MaxFileBytes = *maxFileMB * megabyte
	}
}

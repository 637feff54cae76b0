package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/emergqr/emergqr/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the EmergQR API
//	-i int      connectivity probe interval in seconds
//	-t int      connectivity probe timeout in seconds
//	-d string   path of the local SQLite database
//	-l string   log level (debug, info, warn, error)
//
// Only these flags are looked at; see flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-t", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the EmergQR API")
	probeInterval := fs.Int("i", 0, "connectivity probe interval (in seconds)")
	probeTimeout := fs.Int("t", 0, "connectivity probe timeout (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only explicit -i/-t override: whole seconds would truncate a
	// sub-second value loaded from JSON.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.ProbeInterval = seconds(f.Name, *probeInterval)
		case "t":
			cfg.ProbeTimeout = seconds(f.Name, *probeTimeout)
		}
	})
}

func seconds(name string, n int) time.Duration {
	if n <= 0 {
		panic(fmt.Sprintf("flag -%s must be a positive number of seconds, got %d", name, n))
	}
	return time.Duration(n) * time.Second
}

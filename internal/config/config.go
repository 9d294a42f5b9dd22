// Package config provides configuration for the admin client and the
// development server using command-line flags and environment variables.
package config

import (
	"flag"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Options holds the configuration values for both binaries. Flags set
// the defaults; environment variables (optionally loaded from a .env
// file) override them.
type Options struct {
	// APIBaseURL is the base address of the DDP REST backend, e.g.
	// "http://localhost:8000/api". The client refuses to start
	// without it.
	APIBaseURL string `env:"DDP_API_URL"`

	// StorageBaseURL is the base address for stored images. When
	// empty it is derived from APIBaseURL.
	StorageBaseURL string `env:"DDP_STORAGE_URL"`

	// SessionFile is the path of the persisted session state. When
	// empty the client uses a file under the user config directory.
	SessionFile string `env:"DDP_SESSION_FILE"`

	// SpoofUpdates controls whether updates are sent as POST with an
	// embedded _method=PUT field (required by the PHP backend) or as
	// true PUT requests.
	SpoofUpdates bool `env:"DDP_SPOOF_UPDATES"`

	// Addr defines the dev server's listening address (ip:port).
	Addr string `env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the dev server's Postgres connection string.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// AdminEmail and AdminPassword seed the initial super admin on
	// the dev server when no super admin exists yet.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// LogLevel is the zap level name ("debug", "info", "error").
	LogLevel string `env:"LOG_LEVEL"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.APIBaseURL, "u", "", "base URL of the DDP API")
	flag.StringVar(&options.StorageBaseURL, "s", "", "base URL for stored images")
	flag.StringVar(&options.SessionFile, "session", "", "path to the session state file")
	flag.BoolVar(&options.SpoofUpdates, "spoof-updates", true, "send updates as POST with _method=PUT")
	flag.StringVar(&options.Addr, "a", "localhost:8000", "run dev server on ip:port")
	flag.StringVar(&options.DatabaseDSN, "d", "", "dev server database DSN")
	flag.StringVar(&options.LogLevel, "log-level", "info", "log level")
}

// Parse parses command-line flags and environment variables and returns
// the resulting Options. A .env file in the working directory is loaded
// first when present.
func Parse() (*Options, error) {
	flag.Parse()

	// Missing .env is not an error; explicit env vars still apply.
	_ = godotenv.Load()

	if err := env.Parse(options); err != nil {
		return nil, err
	}
	return options, nil
}

// StorageURL returns the configured image base URL, deriving it from
// the API base when unset: ".../api" becomes ".../storage".
func (o *Options) StorageURL() string {
	if o.StorageBaseURL != "" {
		return o.StorageBaseURL
	}
	base := strings.TrimSuffix(o.APIBaseURL, "/")
	base = strings.TrimSuffix(base, "/api")
	if base == "" {
		return ""
	}
	return base + "/storage"
}

// Package config is the configuration of the form server.
package config

import (
	"time"

	"github.com/twipi/bfhl/internal/cfgutil"
)

// Root is the root configuration of bfhl-form.
type Root struct {
	// ListenAddr is the address the form is served on.
	ListenAddr string `toml:"listen_addr" json:"listen_addr"`
	// BackendURL is the base URL of the BFHL endpoint, without /bfhl.
	BackendURL cfgutil.EnvString `toml:"backend_url" json:"backend_url"`
	// SessionTTL is how long an idle form keeps its state.
	SessionTTL cfgutil.Duration `toml:"session_ttl" json:"session_ttl"`
	// RequestTimeout bounds each call to the backend. Zero waits forever.
	RequestTimeout cfgutil.Duration `toml:"request_timeout" json:"request_timeout"`
}

// Default returns the configuration used when no file is given.
func Default() Root {
	return Root{
		ListenAddr: ":8080",
		BackendURL: "http://localhost:5000",
		SessionTTL: cfgutil.Duration(30 * time.Minute),
	}
}

// Load reads the file at path over [Default]. An empty path returns the
// defaults.
func Load(path string) (Root, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := cfgutil.ParseFileInto(path, &cfg); err != nil {
		return Root{}, err
	}
	return cfg, nil
}

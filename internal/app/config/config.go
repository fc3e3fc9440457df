// Package config loads the query service configuration from a TOML file.
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Document DocumentConfig `koanf:"document"`
	Log      LogConfig      `koanf:"log"`
	CORS     CORSConfig     `koanf:"cors"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ListenAddr string `koanf:"listen_addr"`
}

// DocumentConfig names the JSON document the service queries.
type DocumentConfig struct {
	// URI is a path or a vfs URI (file://, s3://, gs://) to the document.
	URI string `koanf:"uri"`
	// Charset is the document's text encoding; empty means UTF-8.
	Charset string `koanf:"charset"`
	// Separator is the node path separator used in queries.
	Separator string `koanf:"separator"`
}

// LogConfig controls log output.
type LogConfig struct {
	// JSON switches the log encoder from pretty console to JSON lines.
	JSON bool `koanf:"json"`
}

// CORSConfig controls cross-origin handling on the query endpoint.
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	ExposeHeaders    []string `koanf:"expose_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// IsOriginAllowed reports whether origin may use the service.
func (c CORSConfig) IsOriginAllowed(origin string) bool {
	for _, allowed := range c.AllowOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{ListenAddr: ":8280"},
		Document: DocumentConfig{
			Separator: ".",
		},
		CORS: CORSConfig{
			Enabled:      false,
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       3600,
		},
	}
}

// Load reads a TOML configuration file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}

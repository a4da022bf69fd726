// Package config loads the optional boxlayout configuration file.
//
// The file lives at $XDG_CONFIG_HOME/boxlayout/config.toml (falling back to
// ~/.config/boxlayout/config.toml). Every key is optional; a missing file is
// the same as an empty one.
//
//	[render]
//	width = 320
//	height = 480
//	formats = ["svg", "pdf"]
//	style = "blueprint"
//
//	[cache]
//	backend = "redis"            # file | redis | none
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//	prefix = "staging:"          # namespaces keys in a shared cache
//
//	[serve]
//	addr = ":8080"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "boxlayout"
//	solve_rate = 20                # solves per second, 0 = unlimited
//	solve_burst = 40
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/boxlayout/pkg/errors"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config mirrors the file layout.
type Config struct {
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Serve  Serve  `toml:"serve"`
}

// Render holds defaults for compile and render commands.
type Render struct {
	Width   float64  `toml:"width"`
	Height  float64  `toml:"height"`
	Formats []string `toml:"formats"`
	Style   string   `toml:"style"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	TTL      string `toml:"ttl"`
	Prefix   string `toml:"prefix"`
}

// Serve configures the HTTP service.
type Serve struct {
	Addr          string `toml:"addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	// SolveRate limits solves per second; zero means unlimited.
	SolveRate  float64 `toml:"solve_rate"`
	SolveBurst int     `toml:"solve_burst"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache: Cache{Backend: BackendFile, TTL: "24h"},
		Serve: Serve{Addr: ":8080", MongoDatabase: "boxlayout"},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "boxlayout", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "boxlayout", "config.toml"), nil
}

// Load reads path over Default. An empty path means Path(); a missing file
// is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidPath, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML over Default and validates the result. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errs.New(errs.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Render.Width != 0 || c.Render.Height != 0 {
		if err := errs.ValidateSize(c.Render.Width, c.Render.Height); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case "", BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidInput, "cache backend redis needs redis_url")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if _, err := c.Cache.TTLDuration(); err != nil {
		return err
	}
	if c.Serve.SolveRate < 0 || c.Serve.SolveBurst < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "solve_rate and solve_burst must not be negative")
	}
	return nil
}

// TTLDuration parses the ttl key. Empty means no expiry.
func (c Cache) TTLDuration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid cache ttl %q", c.TTL)
	}
	return d, nil
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

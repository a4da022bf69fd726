package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	errs "github.com/matzehuels/boxlayout/pkg/errors"
)

func TestParse(t *testing.T) {
	src := `
[render]
width = 320
height = 480
formats = ["svg", "pdf"]
style = "blueprint"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "1h"
prefix = "staging:"
`
	got, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Default()
	want.Render = Render{Width: 320, Height: 480, Formats: []string{"svg", "pdf"}, Style: "blueprint"}
	want.Cache = Cache{Backend: BackendRedis, RedisURL: "redis://localhost:6379/0", TTL: "1h", Prefix: "staging:"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
	if ttl, _ := got.Cache.TTLDuration(); ttl != time.Hour {
		t.Errorf("TTLDuration = %v, want 1h", ttl)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errs.Code
	}{
		{"syntax", "[render\nwidth = 1", errs.ErrCodeInvalidFormat},
		{"unknown key", "[render]\ncolour = 'red'", errs.ErrCodeInvalidFormat},
		{"negative size", "[render]\nwidth = -1\nheight = 10", errs.ErrCodeInvalidInput},
		{"bad backend", "[cache]\nbackend = 'memcached'", errs.ErrCodeInvalidInput},
		{"redis without url", "[cache]\nbackend = 'redis'", errs.ErrCodeInvalidInput},
		{"bad ttl", "[cache]\nttl = 'soon'", errs.ErrCodeInvalidInput},
		{"negative solve rate", "[serve]\nsolve_rate = -2.0", errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if !errs.Is(err, tt.code) {
				t.Errorf("Parse = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file should yield defaults (-want +got):\n%s", diff)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Render.Width, cfg.Render.Height = 100, 200
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/xdg/boxlayout/config.toml" {
		t.Errorf("Path = %s", p)
	}
}

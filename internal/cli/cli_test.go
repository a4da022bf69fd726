package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/config"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

const toolbarSource = `
hstack {
  element "icon" (width: 40)
  element "label"
  if badge {
    element "badge" (width: 20)
  }
}
`

// captureStdout redirects command output for the duration of the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

// runCLI executes the root command with a cacheless config in a temp dir.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := captureStdout(t)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toolbar.box")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	want := []string{"cache", "compile", "completion", "explore", "render", "serve"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("subcommands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"svg", []string{"svg"}},
		{"svg, pdf,,png", []string{"svg", "pdf", "png"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, parseFormats(tt.input)); diff != "" {
			t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "ui/toolbar.box", "ui/toolbar"},
		{"", "-", "layout"},
		{"out/bar.svg", "toolbar.box", "out/bar"},
		{"out/bar", "toolbar.box", "out/bar"},
		{"out/bar.txt", "toolbar.box", "out/bar.txt"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	single := outputPaths("bar.png", "toolbar.box", map[string][]byte{"png": nil})
	if single["png"] != "bar.png" {
		t.Errorf("single = %v", single)
	}

	multi := outputPaths("", "toolbar.box", map[string][]byte{"svg": nil, "graph": nil})
	want := map[string]string{"svg": "toolbar.svg", "graph": "toolbar.graph.svg"}
	if diff := cmp.Diff(want, multi); diff != "" {
		t.Errorf("multi mismatch (-want +got):\n%s", diff)
	}
}

func TestCacheDir(t *testing.T) {
	c := New(io.Discard, LogInfo)

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if dir, _ := c.cacheDir(); dir != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}

	c.Config.Cache.Dir = "/srv/cache"
	if dir, _ := c.cacheDir(); dir != "/srv/cache" {
		t.Errorf("configured cacheDir() = %q", dir)
	}
}

func TestRunnerKeyPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "layout:"},
		{"staging:", "staging:layout:"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.Config.Cache.Backend = config.BackendNone
			c.Config.Cache.Prefix = tt.prefix

			r, err := c.newRunner(context.Background(), false)
			if err != nil {
				t.Fatalf("newRunner: %v", err)
			}
			defer r.Close()
			if key := r.Keyer.LayoutKey("abc", cache.LayoutKeyOpts{Width: 10}); !strings.HasPrefix(key, tt.want) {
				t.Errorf("LayoutKey = %q, want prefix %q", key, tt.want)
			}
			if key := r.Keyer.ArtifactKey("abc", cache.ArtifactKeyOpts{Format: "svg"}); tt.prefix != "" && !strings.HasPrefix(key, tt.prefix) {
				t.Errorf("ArtifactKey = %q, want prefix %q", key, tt.prefix)
			}
		})
	}
}

func TestCompileCommand(t *testing.T) {
	src := writeSource(t, toolbarSource)

	out, err := runCLI(t, "compile", src, "--width", "200", "--height", "40", "--set", "badge")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, s := range []string{"icon", "label", "badge", "180", "3 surfaces"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}

	jsonPath := filepath.Join(t.TempDir(), "layout.json")
	if _, err := runCLI(t, "compile", src, "-o", jsonPath); err != nil {
		t.Fatalf("compile -o: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if l.Width != 320 || len(l.Surfaces()) != 2 {
		t.Errorf("layout = %gx%g with %d surfaces", l.Width, l.Height, len(l.Surfaces()))
	}
}

func TestCompileCommandErrors(t *testing.T) {
	src := writeSource(t, toolbarSource)
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"compile", filepath.Join(t.TempDir(), "nope.box")}},
		{"unknown flag", []string{"compile", src, "--set", "nope"}},
		{"bad size", []string{"compile", src, "--width=-5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	src := writeSource(t, toolbarSource)
	base := filepath.Join(t.TempDir(), "out", "toolbar")

	out, err := runCLI(t, "render", src, "-f", "svg,json,dot", "-o", base, "--groups")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, ext := range []string{".svg", ".json", ".dot"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s: %v", ext, err)
		}
		if !strings.Contains(out, base+ext) {
			t.Errorf("output does not list %s", base+ext)
		}
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	src := writeSource(t, toolbarSource)
	if _, err := runCLI(t, "render", src, "-f", "gif"); err == nil {
		t.Error("expected invalid format error")
	}
}

func TestCachePathCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("cache path = %q", out)
	}
}

func TestRenderCompiledLayout(t *testing.T) {
	src := writeSource(t, toolbarSource)
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "toolbar.json")
	if _, err := runCLI(t, "compile", src, "--set", "badge", "-o", jsonPath); err != nil {
		t.Fatalf("compile: %v", err)
	}

	svgPath := filepath.Join(dir, "toolbar.svg")
	out, err := runCLI(t, "render", jsonPath, "-f", "svg", "-o", svgPath, "--style", "blueprint")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `id="frame-badge"`) || !strings.Contains(string(data), `id="grid"`) {
		t.Errorf("unexpected svg:\n%.300s", data)
	}
	if !strings.Contains(out, "3 surfaces") {
		t.Errorf("output = %q", out)
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Faultbox/objscene/internal/config"
)

const testdata = "../../pkg/formats/testdata/"

func runTool(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no args", nil, 1, "Commands:"},
		{"unknown", []string{"explode"}, 1, "Unknown command: explode"},
		{"info without file", []string{"info"}, 1, "Usage: objtool info"},
		{"tangents two files", []string{"tangents", "a.obj", "b.obj"}, 1, "Usage: objtool tangents"},
		{"bad flag", []string{"dump", "-bogus", "a.obj"}, 1, "Usage: objtool dump [-n N]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runTool(tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr %q does not contain %q", stderr, tt.wantErr)
			}
		})
	}

	if code, stdout, _ := runTool("help"); code != 0 || !strings.Contains(stdout, "objtool") {
		t.Errorf("help: code %d, output %q", code, stdout)
	}
}

func TestRun_Info(t *testing.T) {
	code, stdout, stderr := runTool("info", testdata+"grid.obj", testdata+"triangle.obj")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}

	for _, want := range []string{
		"Object:    grid",
		"Vertices:  24",
		"Triangles: 8",
		"Object:    triangle",
		"Vertices:  3",
		"Bounds:    (0, 0, 0) - (2, 2, 0)",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	// Input order is kept
	if strings.Index(stdout, "grid") > strings.Index(stdout, "triangle") {
		t.Error("files printed out of order")
	}
}

func TestRun_InfoMissing(t *testing.T) {
	code, _, stderr := runTool("info", "/nonexistent/mesh.obj")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr, "Error: ") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_Validate(t *testing.T) {
	dir := t.TempDir()
	degenerate := filepath.Join(dir, "flat_uv.obj")
	data := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0.5 0.5\nvn 0 0 1\nf 1/1/1 2/1/1 3/1/1\n"
	if err := os.WriteFile(degenerate, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runTool("validate", testdata+"grid.obj", degenerate)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout, "ok   "+testdata+"grid.obj") {
		t.Errorf("grid should validate:\n%s", stdout)
	}
	if !strings.Contains(stdout, "FAIL "+degenerate) || !strings.Contains(stdout, "degenerate UV") {
		t.Errorf("degenerate file should fail:\n%s", stdout)
	}
	if !strings.Contains(stderr, "1 of 2 files failed") {
		t.Errorf("stderr = %q", stderr)
	}

	code, _, _ = runTool("validate", "-uv", "propagate", degenerate)
	if code != 0 {
		t.Errorf("propagate policy should accept the file, got code %d", code)
	}
}

func TestRun_Tangents(t *testing.T) {
	code, stdout, stderr := runTool("tangents", testdata+"triangle.obj")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 3 vertex lines and a summary, got:\n%s", stdout)
	}
	for i := 0; i < 3; i++ {
		if !strings.HasSuffix(lines[i], "T 1 0 0  B 0 1 0") {
			t.Errorf("line %d = %q", i, lines[i])
		}
	}
	if lines[3] != "# 3 vertices, 0 with non-finite frames" {
		t.Errorf("summary = %q", lines[3])
	}
}

func TestRun_TangentsBadMode(t *testing.T) {
	code, _, stderr := runTool("tangents", "-mode", "sideways", testdata+"triangle.obj")
	if code != 1 || !strings.Contains(stderr, "Error:") {
		t.Errorf("code %d, stderr %q", code, stderr)
	}
}

func TestRun_Dump(t *testing.T) {
	code, stdout, stderr := runTool("dump", "-n", "2", "-mode", "accumulate", testdata+"grid.obj")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "# 24 vertices, mode Triangles") {
		t.Errorf("header = %q", stdout)
	}

	var rows int
	for _, line := range strings.Split(stdout, "\n") {
		if line != "" && !strings.HasPrefix(line, "#") {
			rows++
		}
	}
	if rows != 2 {
		t.Errorf("expected 2 vertex rows with -n 2, got %d", rows)
	}
}

func TestRun_ConfigDefaultPath(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("config dir ignores XDG_CONFIG_HOME on this platform")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	code, stdout, stderr := runTool("config")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, config.DefaultPath()) {
		t.Errorf("stdout = %q, want %s", stdout, config.DefaultPath())
	}
	if _, err := os.Stat(config.DefaultPath()); err != nil {
		t.Errorf("config not written: %v", err)
	}
}

func TestRun_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objview.yaml")

	code, stdout, stderr := runTool("config", path)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, path) {
		t.Errorf("stdout = %q", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "tangents: overwrite") {
		t.Errorf("unexpected config:\n%s", data)
	}
}

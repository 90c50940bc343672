package correlate

import (
	"runtime"
	"strings"
	"testing"
)

func TestSkipFrame(t *testing.T) {
	cases := []struct {
		name     string
		funcName string
		file     string
		want     bool
	}{
		{"empty", "", "", true},
		{"runtime", "runtime.goexit", "/usr/local/go/src/runtime/asm_amd64.s", true},
		{"testing", "testing.tRunner", "/usr/local/go/src/testing/testing.go", true},
		{"sdk own", modulePrefix + "/pkg/logger.(*Logger).Info", "/src/logger.go", true},
		{"module cache", "github.com/someone/dep.Do", "/home/u/go/pkg/mod/github.com/someone/dep@v1.0.0/do.go", true},
		{"vendored", "github.com/someone/dep.Do", "/src/app/vendor/github.com/someone/dep/do.go", true},
		{"user code", "main.handleRequest", "/src/app/main.go", false},
	}
	for _, tc := range cases {
		if got := skipFrame(tc.funcName, tc.file); got != tc.want {
			t.Errorf("%s: skipFrame = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRenderFrame(t *testing.T) {
	frame := runtime.Frame{
		Function: "github.com/acme/app/internal/api.(*Server).Handle",
		File:     "/src/app/internal/api/server.go",
		Line:     42,
	}
	got := renderFrame(frame)
	want := "/src/app/internal/api/server.go:(*Server).Handle:42"
	if got != want {
		t.Errorf("renderFrame = %q, want %q", got, want)
	}
}

func TestRenderFramePlainFunction(t *testing.T) {
	frame := runtime.Frame{
		Function: "main.run",
		File:     "/src/app/main.go",
		Line:     7,
	}
	if got := renderFrame(frame); got != "/src/app/main.go:run:7" {
		t.Errorf("renderFrame = %q", got)
	}
}

func TestCaptureCallSiteExcludesSDKFrames(t *testing.T) {
	// Captured from inside the module: every frame is either SDK-owned or
	// test harness, so the rendered call site must not leak them.
	got := CaptureCallSite()
	if strings.Contains(got, modulePrefix) {
		t.Errorf("call site leaked SDK frames: %q", got)
	}
	if strings.Contains(got, "testing.tRunner") {
		t.Errorf("call site leaked test harness frames: %q", got)
	}
}

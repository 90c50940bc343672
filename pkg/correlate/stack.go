package correlate

import (
	"fmt"
	"path"
	"runtime"
	"strings"
)

const maxCallSiteFrames = 32

// modulePrefix identifies this SDK's own frames so user-facing call-site
// traces start at the caller, not inside the logger.
const modulePrefix = "github.com/traceroot-ai/traceroot-sdk-go"

// frameSeparator joins rendered frames. Semicolons are reserved by the cloud
// record format, so frames use an arrow.
const frameSeparator = " -> "

// CaptureCallSite walks the current goroutine's stack and renders the
// user-owned frames as "path:function:line", oldest call first. SDK frames,
// third-party module frames and runtime internals are discarded. An empty
// string is returned when no user frame remains.
func CaptureCallSite() string {
	pcs := make([]uintptr, maxCallSiteFrames)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var rendered []string
	for {
		frame, more := frames.Next()
		if frame.PC != 0 && !skipFrame(frame.Function, frame.File) {
			rendered = append(rendered, renderFrame(frame))
		}
		if !more {
			break
		}
	}

	// Oldest call first: runtime.Callers yields innermost-first.
	for i, j := 0, len(rendered)-1; i < j; i, j = i+1, j-1 {
		rendered[i], rendered[j] = rendered[j], rendered[i]
	}
	return strings.Join(rendered, frameSeparator)
}

// skipFrame reports whether a stack frame belongs to the SDK itself, a
// third-party module, or runtime internals.
func skipFrame(funcName, file string) bool {
	if funcName == "" {
		return true
	}
	if strings.HasPrefix(funcName, "runtime.") || strings.HasPrefix(funcName, "testing.") {
		return true
	}
	if strings.HasPrefix(funcName, modulePrefix) {
		return true
	}
	// Modules fetched into the module cache and vendored trees are not the
	// caller's code.
	if strings.Contains(file, "/pkg/mod/") || strings.Contains(file, "/vendor/") {
		return true
	}
	return false
}

// renderFrame formats one frame as "path:function:line" using the short
// function name.
func renderFrame(frame runtime.Frame) string {
	fn := frame.Function
	if idx := strings.LastIndex(fn, "/"); idx >= 0 {
		fn = fn[idx+1:]
	}
	if idx := strings.Index(fn, "."); idx >= 0 {
		fn = fn[idx+1:]
	}
	return fmt.Sprintf("%s:%s:%d", path.Clean(frame.File), fn, frame.Line)
}

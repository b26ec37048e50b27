// Package debug is the gated diagnostic log of vbsym. Nothing is written
// unless debugging is enabled (build flag, VBSYM_DEBUG, or --debug) and an
// output is configured, so the symbol builder and workspace can log freely.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug turns debug output on when set to "true", either at build time
// with -ldflags "-X github.com/standardbeagle/vbsym/internal/debug.EnableDebug=true"
// or by the CLI --debug flag.
var EnableDebug = "false"

// EnvVar enables debug output when set to "1" or "true".
const EnvVar = "VBSYM_DEBUG"

// sink is where debug lines go. file is set only when the sink was opened by
// InitDebugLogFile and must be closed by CloseDebugLog.
var (
	mu   sync.Mutex
	sink io.Writer
	file *os.File
)

// SetDebugOutput sets the writer for debug output. nil disables output.
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sink = w
}

// InitDebugLogFile routes debug output to a new timestamped file under
// $TMPDIR/vbsym-debug-logs and returns its path.
func InitDebugLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(os.TempDir(), "vbsym-debug-logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	// nanoseconds keep two runs in the same second apart
	name := fmt.Sprintf("debug-%s-%d.log", time.Now().Format("2006-01-02T150405"), time.Now().Nanosecond())
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	file, sink = f, f
	return f.Name(), nil
}

// CloseDebugLog closes the file opened by InitDebugLogFile. It is a no-op
// when no file is open.
func CloseDebugLog() error {
	mu.Lock()
	defer mu.Unlock()

	if file == nil {
		return nil
	}
	err := file.Close()
	file, sink = nil, nil
	return err
}

func IsDebugEnabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv(EnvVar)
	return v == "1" || v == "true"
}

func writer() io.Writer {
	if !IsDebugEnabled() {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	return sink
}

// Printf writes an untagged debug line.
func Printf(format string, args ...interface{}) {
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG] "+format, args...)
	}
}

// Log writes a debug line tagged with component.
func Log(component, format string, args ...interface{}) {
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG:%s] %s", component, fmt.Sprintf(format, args...))
	}
}

// Timer starts timing an operation and returns the function that logs its
// duration under component. When debugging is off the returned function does
// nothing.
//
//	defer debug.Timer("WORKSPACE", "index "+root)()
func Timer(component, operation string) func() {
	if writer() == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		Log(component, "%s took %v\n", operation, time.Since(start))
	}
}

// LogBuild logs symbol table construction.
func LogBuild(format string, args ...interface{}) {
	Log("BUILD", format, args...)
}

// LogWorkspace logs document store, debouncer and watcher activity.
func LogWorkspace(format string, args ...interface{}) {
	Log("WORKSPACE", format, args...)
}

// LogConfig logs configuration loading.
func LogConfig(format string, args ...interface{}) {
	Log("CONFIG", format, args...)
}

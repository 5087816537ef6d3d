// Package debug is CodeCortX-MCP's own diagnostic logger: a tiny,
// dependency-free sink for operational traces (indexing progress, watcher
// errors, MCP dispatch) that must never land on stdout, since stdout is the
// MCP JSON-RPC transport and a stray debug line there corrupts the stream.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug is set at build time to bake debug logging into a binary
// without needing the environment variable:
// go build -ldflags "-X github.com/kensave/CodeCortX-MCP/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set by mcpserver.Server.Run when serving over stdio. While true,
// every logging function below is a no-op regardless of EnableDebug.
var MCPMode = false

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer
	debugFile   *os.File
)

// Component tags a log line with the subsystem that produced it.
type Component string

const (
	ComponentIndex  Component = "INDEX"
	ComponentSearch Component = "SEARCH"
	ComponentMCP    Component = "MCP"
	ComponentWatch  Component = "WATCH"
)

// SetMCPMode switches logging off for the duration of an MCP stdio session.
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput points debug output at w, or disables it entirely if w is
// nil. Exposed mainly for tests; production callers use InitDebugLogFile.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile opens a fresh timestamped log file under the OS temp
// directory and routes all debug output there. Returns the file's path so
// the caller can report it. Pair with CloseDebugLog on shutdown.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "codecortx-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("debug: create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("debug: create log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the file opened by InitDebugLogFile, if any.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	debugFile = nil
	debugOutput = nil
	return err
}

// IsDebugEnabled reports whether logging is active: never in MCP mode,
// otherwise if baked in at build time or toggled by CODECORTX_DEBUG.
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	switch os.Getenv("CODECORTX_DEBUG") {
	case "1", "true":
		return true
	default:
		return false
	}
}

// emit writes one formatted line to the current output, holding the mutex
// for the duration of the write so concurrent loggers never interleave
// bytes within a line (or race on a test's bytes.Buffer).
func emit(prefix, format string, args ...interface{}) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if debugOutput == nil {
		return
	}
	fmt.Fprintf(debugOutput, prefix+format, args...)
}

// Printf writes an unstructured debug line, gated by IsDebugEnabled.
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	emit("[DEBUG] ", format, args...)
}

// Println writes an unstructured debug line, gated by IsDebugEnabled.
func Println(args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if debugOutput == nil {
		return
	}
	fmt.Fprint(debugOutput, "[DEBUG] ")
	fmt.Fprintln(debugOutput, args...)
}

// Log writes a line tagged with component, e.g. "[DEBUG:INDEX] ...".
func Log(component Component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	emit(fmt.Sprintf("[DEBUG:%s] ", component), format, args...)
}

// LogIndexing is Log tagged with ComponentIndex.
func LogIndexing(format string, args ...interface{}) {
	Log(ComponentIndex, format, args...)
}

// LogSearch is Log tagged with ComponentSearch.
func LogSearch(format string, args ...interface{}) {
	Log(ComponentSearch, format, args...)
}

// LogMCP is Log tagged with ComponentMCP.
func LogMCP(format string, args ...interface{}) {
	Log(ComponentMCP, format, args...)
}

// Fatal records a fatal condition to the debug log (suppressed in MCP mode)
// and returns it as an error for the caller to propagate. It never exits the
// process; FatalAndExit is the CLI-only variant that does.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		emit("[FATAL] ", "%s", msg)
	}
	return fmt.Errorf("fatal error: %s", msg)
}

// FatalAndExit logs msg like Fatal and then terminates the process. Reserved
// for cmd/codecortx entry points that have no caller left to hand an error
// back to; an MCP server must never call this, since os.Exit mid-session
// would drop the client's in-flight request with no response at all.
func FatalAndExit(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		emit("[FATAL] ", "%s", msg)
	}
	os.Exit(1)
}

// CatastrophicError records an unrecoverable-but-non-fatal condition. In MCP
// mode it is suppressed entirely: the error belongs in the protocol response,
// not on a side channel the client never reads.
func CatastrophicError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		emit("[CATASTROPHIC] ", "%s", msg)
	}
}

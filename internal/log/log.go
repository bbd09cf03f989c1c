package log

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	charmlog "github.com/charmbracelet/log/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
)

// Setup installs the process-wide logger. In debug mode logs go to stderr
// through a console handler; otherwise they go to a rotated JSON file under
// the data directory.
func Setup(logFile string, debug bool) {
	initOnce.Do(func() {
		var handler slog.Handler
		if debug {
			handler = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
				Level:           charmlog.DebugLevel,
				ReportTimestamp: true,
			})
		} else {
			logRotator := &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // MB
				MaxBackups: 0,
				MaxAge:     30, // days
				Compress:   false,
			}
			handler = slog.NewJSONHandler(logRotator, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: true,
			})
		}

		slog.SetDefault(slog.New(handler))
		initialized.Store(true)
	})
}

func Initialized() bool {
	return initialized.Load()
}

// MaskToken masks a bearer token by showing only the first and last 5
// characters. For tokens shorter than 10 characters, it shows first 2 and
// last 2 characters. Returns "***EMPTY***" for empty strings.
func MaskToken(token string) string {
	if token == "" {
		return "***EMPTY***"
	}

	tok := strings.TrimPrefix(token, "Bearer ")

	tokLen := len(tok)
	switch {
	case tokLen <= 4:
		return strings.Repeat("*", tokLen)
	case tokLen <= 10:
		return tok[:2] + strings.Repeat("*", tokLen-4) + tok[tokLen-2:]
	default:
		return tok[:5] + strings.Repeat("*", tokLen-10) + tok[tokLen-5:]
	}
}

func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		timestamp := time.Now().Format("20060102-150405")
		filename := fmt.Sprintf("interchat-panic-%s-%s.log", name, timestamp)

		file, err := os.Create(filename)
		if err == nil {
			defer file.Close()

			fmt.Fprintf(file, "Panic in %s: %v\n\n", name, r)
			fmt.Fprintf(file, "Time: %s\n\n", time.Now().Format(time.RFC3339))
			fmt.Fprintf(file, "Stack Trace:\n%s\n", debug.Stack())

			if cleanup != nil {
				cleanup()
			}
		}
	}
}

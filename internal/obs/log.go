package obs

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger

	tailMu    sync.Mutex
	tailLines []string
)

// tailCapacity bounds the in-memory log buffer served by the /logs endpoint.
const tailCapacity = 200

// Logger returns the shared structured logger used across the service.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// OpenLogFile directs the shared logger at stdout plus a date-stamped file
// under dir. The file handle stays open for the process lifetime.
func OpenLogFile(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	name := fmt.Sprintf("system_%s.log", time.Now().UTC().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	Logger().SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

// Event emits a structured JSON log line and records it in the tail buffer.
func Event(level, msg string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	for k, v := range fields {
		entry[k] = v
	}
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"ts":"error","level":"error","msg":"log marshal failed"}`)
		return
	}
	line := string(data)
	Logger().Println(line)
	appendTail(line)
}

// Info logs at info level. Fields follow as alternating key/value pairs.
func Info(msg string, kv ...any) { Event("info", msg, pairs(kv)) }

// Warn logs at warn level.
func Warn(msg string, kv ...any) { Event("warn", msg, pairs(kv)) }

// Error logs at error level.
func Error(msg string, kv ...any) { Event("error", msg, pairs(kv)) }

// Tail returns up to n of the most recent log lines, oldest first.
func Tail(n int) []string {
	tailMu.Lock()
	defer tailMu.Unlock()
	if n <= 0 || len(tailLines) == 0 {
		return nil
	}
	if n > len(tailLines) {
		n = len(tailLines)
	}
	out := make([]string, n)
	copy(out, tailLines[len(tailLines)-n:])
	return out
}

func appendTail(line string) {
	line = strings.TrimRight(line, "\n")
	tailMu.Lock()
	defer tailMu.Unlock()
	tailLines = append(tailLines, line)
	if len(tailLines) > tailCapacity {
		tailLines = tailLines[len(tailLines)-tailCapacity:]
	}
}

func pairs(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	fields := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields[key] = kv[i+1]
	}
	return fields
}

package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const logFilePrefix = "plans-"

// DailyFileWriter writes to one log file per day and removes files older
// than the retention period.
type DailyFileWriter struct {
	dir         string
	retention   time.Duration
	now         func() time.Time
	mu          sync.Mutex
	file        *os.File
	currentDay  string
	lastCleanup time.Time
}

// NewDailyFileWriter creates the log directory and opens today's file
func NewDailyFileWriter(dir string, retentionDays int) (*DailyFileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	w := &DailyFileWriter{
		dir:       dir,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotate(dayKey(w.now())); err != nil {
		return nil, err
	}
	return w, nil
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func fileNameFor(day string) string {
	return logFilePrefix + day + ".log"
}

// rotate opens the file for day (caller must hold the lock)
func (w *DailyFileWriter) rotate(day string) error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}

	path := filepath.Join(w.dir, fileNameFor(day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	w.file = f
	w.currentDay = day
	return nil
}

// Write implements io.Writer, switching files when the day changes
func (w *DailyFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if day := dayKey(now); day != w.currentDay {
		if err := w.rotate(day); err != nil {
			return 0, err
		}
	}

	if w.retention > 0 && now.Sub(w.lastCleanup) > time.Hour {
		w.lastCleanup = now
		w.cleanup(now)
	}

	if w.file == nil {
		return 0, fmt.Errorf("no log file available")
	}
	return w.file.Write(p)
}

// cleanup removes expired log files (caller must hold the lock)
func (w *DailyFileWriter) cleanup(now time.Time) int {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0
	}

	cutoff := now.Add(-w.retention)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		if name == fileNameFor(w.currentDay) {
			continue
		}

		day, err := time.ParseInLocation("2006-01-02", strings.TrimSuffix(strings.TrimPrefix(name, logFilePrefix), ".log"), now.Location())
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			if err := os.Remove(filepath.Join(w.dir, name)); err == nil {
				removed++
			}
		}
	}
	return removed
}

// Close closes the current file
func (w *DailyFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger builds a logger writing text to the console and, when dir is
// set, JSON to a daily file. The returned closer releases the file.
func SetupLogger(dir string, level slog.Level, retentionDays int) (*slog.Logger, func() error) {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if dir == "" {
		return slog.New(consoleHandler), func() error { return nil }
	}

	writer, err := NewDailyFileWriter(dir, retentionDays)
	if err != nil {
		consoleLogger := slog.New(consoleHandler)
		consoleLogger.Error("Failed to initialize file logging", "error", err)
		return consoleLogger, func() error { return nil }
	}

	// Console gets text format, file gets JSON format for better parsing
	fileHandler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), writer.Close
}

// multiHandler implements slog.Handler to write to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

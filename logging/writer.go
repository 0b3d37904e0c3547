package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// stderr is swapped in tests.
var stderr io.Writer = os.Stderr

// levelWriter writes one level to daily files rotated by lumberjack:
// {Director}/{yyyy-mm-dd}/{level}.log
type levelWriter struct {
	config  Config
	level   string
	mu      sync.Mutex
	date    string
	current *lumberjack.Logger
}

var (
	openWriters   []*levelWriter
	openWritersMu sync.Mutex
)

func newLevelWriter(config Config, level string) *levelWriter {
	w := &levelWriter{config: config, level: level}

	openWritersMu.Lock()
	openWriters = append(openWriters, w)
	openWritersMu.Unlock()

	return w
}

// Write implements io.Writer.
func (w *levelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	date := time.Now().Format("2006-01-02")
	if w.current == nil || w.date != date {
		if w.current != nil {
			_ = w.current.Close()
		}
		w.current = w.open(date)
		w.date = date
	}
	return w.current.Write(p)
}

func (w *levelWriter) open(date string) *lumberjack.Logger {
	dirPath := filepath.Join(w.config.Director, date)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		dirPath = w.config.Director
		_ = os.MkdirAll(dirPath, 0755)
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(dirPath, w.level+".log"),
		MaxSize:    w.config.MaxSize,
		MaxBackups: w.config.MaxBackups,
		MaxAge:     w.config.MaxAge,
		Compress:   w.config.Compress,
		LocalTime:  true,
	}
}

// Close closes the current file.
func (w *levelWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	return err
}

// CloseAllWriters closes every file opened by loggers in this process.
func CloseAllWriters() error {
	openWritersMu.Lock()
	defer openWritersMu.Unlock()

	var lastErr error
	for _, w := range openWriters {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	openWriters = nil
	return lastErr
}

var _ io.WriteCloser = (*levelWriter)(nil)

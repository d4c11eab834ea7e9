package tui

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ajramos/evtui/internal/config"
)

// NewLogger opens the log file at path, or ~/.config/evtui/evtui.log when
// path is empty. If the file cannot be opened, logs are discarded.
func NewLogger(path string) (*log.Logger, io.Closer) {
	if path == "" {
		path = filepath.Join(config.DefaultLogDir(), "evtui.log")
	}
	path = config.ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			return log.New(f, "[evtui] ", log.LstdFlags|log.Lmicroseconds), f
		}
	}
	return log.New(io.Discard, "[evtui] ", log.LstdFlags|log.Lmicroseconds), nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

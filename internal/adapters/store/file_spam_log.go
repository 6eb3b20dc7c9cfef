package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TimestampLayout is the layout of spam log timestamps
const TimestampLayout = "2006-01-02 15:04:05"

// FileSpamLog appends confirmed spam to a plain text file, one entry per line
type FileSpamLog struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// NewFileSpamLog creates a spam log writing to path
func NewFileSpamLog(path string, logger *zap.Logger) (*FileSpamLog, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &FileSpamLog{path: path, logger: logger, now: time.Now}, nil
}

// Record appends "[timestamp] text". The write happens under an exclusive
// lock on the log itself so concurrent writers never interleave lines.
func (l *FileSpamLog) Record(ctx context.Context, text string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open spam log: %w", err)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("failed to lock spam log: %w", err)
	}
	defer unlockFile(f)

	if _, err := f.WriteString(formatLogEntry(l.now(), text)); err != nil {
		return fmt.Errorf("failed to write spam log: %w", err)
	}
	return nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// formatLogEntry folds line breaks so every entry stays on one line
func formatLogEntry(at time.Time, text string) string {
	return fmt.Sprintf("[%s] %s\n", at.Format(TimestampLayout), lineBreaks.Replace(text))
}

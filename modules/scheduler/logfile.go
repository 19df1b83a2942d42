package scheduler

import (
	"fmt"
	"os"
	"sync"
)

// LogFile appends lines to a plain-text file, creating it on first write.
type LogFile struct {
	path string
	mu   sync.Mutex
}

// NewLogFile creates a LogFile for path.
func NewLogFile(path string) *LogFile {
	return &LogFile{path: path}
}

// Path returns the file path.
func (f *LogFile) Path() string {
	return f.path
}

// Append writes each line followed by a newline.
func (f *LogFile) Append(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	defer file.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}
	return nil
}

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var numberedFile = regexp.MustCompile(`^app-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingWriter is an io.Writer over weekly log files named
// app-YYYY-Www.log. When a file reaches maxFileSize the writer continues in
// app-YYYY-Www_NN.log. Files older than the retention period are removed by
// Cleanup.
type RotatingWriter struct {
	dir         string
	retention   time.Duration
	maxFileSize int64
	now         func() time.Time

	mu          sync.Mutex
	file        *os.File
	week        string
	size        int64
	forceNumber bool
}

// NewRotatingWriter creates dir if needed and opens the file for the current
// week.
func NewRotatingWriter(dir string, retentionWeeks int, maxFileSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	rw := &RotatingWriter{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if err := rw.rotate(weekKey(rw.now())); err != nil {
		return nil, err
	}
	return rw, nil
}

// weekKey returns the ISO week in YYYY-Www form.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// rotate opens the right file for week. Caller holds mu.
func (rw *RotatingWriter) rotate(week string) error {
	if rw.file != nil {
		if err := rw.file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file during rotation: %v\n", err)
		}
		rw.file = nil
	}

	name := rw.pickFile(week)
	path := filepath.Join(rw.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	rw.file, rw.week, rw.size = f, week, size
	rw.forceNumber = false
	return nil
}

// pickFile returns the base file of the week while it has room, otherwise the
// last numbered overflow file with room, otherwise the next numbered file.
func (rw *RotatingWriter) pickFile(week string) string {
	base := fmt.Sprintf("app-%s.log", week)
	if !rw.forceNumber {
		info, err := os.Stat(filepath.Join(rw.dir, base))
		if err != nil || rw.maxFileSize <= 0 || info.Size() < rw.maxFileSize {
			return base
		}
	}

	matches, _ := filepath.Glob(filepath.Join(rw.dir, fmt.Sprintf("app-%s_??.log", week)))
	highest, lastSize := 0, int64(0)
	for _, m := range matches {
		sub := numberedFile.FindStringSubmatch(filepath.Base(m))
		if len(sub) < 2 {
			continue
		}
		n, _ := strconv.Atoi(sub[1])
		if n <= highest {
			continue
		}
		highest = n
		lastSize = 0
		if info, err := os.Stat(m); err == nil {
			lastSize = info.Size()
		}
	}
	if highest > 0 && lastSize < rw.maxFileSize && !rw.forceNumber {
		return fmt.Sprintf("app-%s_%02d.log", week, highest)
	}
	return fmt.Sprintf("app-%s_%02d.log", week, highest+1)
}

// Write implements io.Writer.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	week := weekKey(rw.now())
	switch {
	case week != rw.week:
		if err := rw.rotate(week); err != nil {
			return 0, err
		}
	case rw.maxFileSize > 0 && rw.size > 0 && rw.size+int64(len(p)) > rw.maxFileSize:
		rw.forceNumber = true
		if err := rw.rotate(week); err != nil {
			return 0, err
		}
	}
	if rw.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// Cleanup removes app-*.log files last modified before the retention cutoff
// and returns how many were deleted.
func (rw *RotatingWriter) Cleanup() (int, error) {
	entries, err := os.ReadDir(rw.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	rw.mu.Lock()
	current := ""
	if rw.file != nil {
		current = filepath.Base(rw.file.Name())
	}
	rw.mu.Unlock()

	cutoff := rw.now().Add(-rw.retention)
	deleted := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == current || !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(rw.dir, name)); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

// CurrentFile returns the path of the file being written.
func (rw *RotatingWriter) CurrentFile() string {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.file == nil {
		return ""
	}
	return rw.file.Name()
}

// Close closes the current file.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.file == nil {
		return nil
	}
	err := rw.file.Close()
	rw.file = nil
	return err
}

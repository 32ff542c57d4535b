package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ramen-cli/internal/model"
)

// SkipLog appends one line per skipped place. The file is opened for each
// entry so lines already written survive an interrupted run.
type SkipLog struct {
	path string
	mu   sync.Mutex
}

// NewSkipLog creates the parent directory of path and returns a SkipLog.
func NewSkipLog(path string) (*SkipLog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sink: create skip log dir %s", dir)
		}
	}
	return &SkipLog{path: path}, nil
}

// Path returns the log file path.
func (l *SkipLog) Path() string { return l.path }

// FormatSkip renders a skip record as a log line without the newline.
func FormatSkip(rec model.SkipRecord) string {
	return fmt.Sprintf("%s, %s — %s", rec.City, rec.State, rec.Reason)
}

// Append writes rec to the log.
func (l *SkipLog) Append(rec model.SkipRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "sink: open skip log %s", l.path)
	}
	if _, err := fmt.Fprintln(f, FormatSkip(rec)); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "sink: write skip log")
	}
	return eris.Wrap(f.Close(), "sink: close skip log")
}

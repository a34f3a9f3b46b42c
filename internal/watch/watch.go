package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Tiliavir/work-hours-tracker/internal/logger"
	"github.com/Tiliavir/work-hours-tracker/internal/report"
	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
	"github.com/Tiliavir/work-hours-tracker/internal/tracker"
)

// DefaultInterval is the tick period.
const DefaultInterval = time.Second

// Watcher calls onChange whenever a record in dir is written, replaced or
// removed.
type Watcher struct {
	dir      string
	onChange func(path string)
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher returns a watcher for dir. Nothing is watched until Start.
func NewWatcher(dir string, onChange func(path string)) *Watcher {
	return &Watcher{dir: dir, onChange: onChange, stop: make(chan struct{})}
}

// Start begins watching.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fsw.Close()
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if isRecord(event.Name) && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					w.onChange(event.Name)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", "err", err)
			case <-w.stop:
				return
			}
		}
	}()
	return nil
}

// Stop ends watching and waits for the event goroutine to exit.
func (w *Watcher) Stop() {
	close(w.stop)
	w.wg.Wait()
}

// isRecord reports whether path is a record file or the SQLite database,
// ignoring temporary files written during atomic saves.
func isRecord(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch filepath.Ext(base) {
	case ".json", ".db":
		return true
	}
	return strings.HasSuffix(base, ".db-wal")
}

// Options configures Run.
type Options struct {
	// DataDir is watched for changes made by other processes.
	DataDir string
	// Interval defaults to DefaultInterval.
	Interval time.Duration
	Out      io.Writer
}

// Run ticks until ctx is cancelled. Each tick writes the status line to
// opts.Out. A record change reloads the session and re-arms the reminder.
func Run(ctx context.Context, tr *tracker.Tracker, opts Options) error {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if err := tr.Rearm(); err != nil {
		return err
	}

	changed := make(chan struct{}, 1)
	if opts.DataDir != "" {
		w := NewWatcher(opts.DataDir, func(path string) {
			logger.Debug("record changed", "path", path)
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		if err := w.Start(); err != nil {
			logger.Warn("file watching disabled", "err", err)
		} else {
			defer w.Stop()
		}
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	tick := func() error {
		st, err := tr.Tick()
		if err != nil {
			return err
		}
		fmt.Fprintf(opts.Out, "\r%s", Line(st))
		return nil
	}
	if err := tick(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out)
			return nil
		case <-changed:
			if err := tr.Rearm(); err != nil {
				logger.Warn("reload failed", "err", err)
			}
		case <-ticker.C:
			if err := tick(); err != nil {
				return err
			}
		}
	}
}

// Line renders one status line for the live display.
func Line(st report.TodayStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %s", st.State, timecalc.FormatTimer(st.Elapsed))
	fmt.Fprintf(&b, "  worked %s", timecalc.FormatDuration(st.Worked))
	if st.Overtime > 0 {
		fmt.Fprintf(&b, "  overtime %s", timecalc.FormatDuration(st.Overtime))
	} else {
		fmt.Fprintf(&b, "  remaining %s", timecalc.FormatDuration(st.Remaining))
	}
	return b.String()
}

package tracker

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/work-hours-tracker/internal/export"
	"github.com/Tiliavir/work-hours-tracker/internal/history"
	"github.com/Tiliavir/work-hours-tracker/internal/importer"
	"github.com/Tiliavir/work-hours-tracker/internal/logger"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/notify"
	"github.com/Tiliavir/work-hours-tracker/internal/reminder"
	"github.com/Tiliavir/work-hours-tracker/internal/report"
	"github.com/Tiliavir/work-hours-tracker/internal/session"
	"github.com/Tiliavir/work-hours-tracker/internal/storage"
	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

var (
	// ErrInvalidEntry is returned when a manual edit would record negative
	// worked time or lacks a required field.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrNotFound is returned when deleting a day or leave that does not exist.
	ErrNotFound = errors.New("not found")
)

// Tracker serializes all state changes. Each operation holds one lock from
// loading the records to saving them.
type Tracker struct {
	mu        sync.Mutex
	repo      *storage.Repository
	now       func() time.Time
	notifier  notify.Notifier
	reminders *reminder.Reminders
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithNotifier sets where overtime alerts go. The default only logs.
func WithNotifier(n notify.Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

// WithReminders enables the checkout reminder. Without it nothing is armed.
func WithReminders(r *reminder.Reminders) Option {
	return func(t *Tracker) { t.reminders = r }
}

// New returns a tracker over repo.
func New(repo *storage.Repository, opts ...Option) *Tracker {
	t := &Tracker{repo: repo, now: time.Now, notifier: notify.Log{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Snapshot is a consistent view of all records at one instant.
type Snapshot struct {
	Now      time.Time
	Settings model.Settings
	Session  session.Session
	History  history.Ledger
	Leaves   []model.LeaveEntry
}

// Today returns the current day's statistics.
func (s Snapshot) Today() report.TodayStats {
	return report.Today(s.Now, s.Settings, s.History, s.Session)
}

// Progress returns the current billing cycle's progress.
func (s Snapshot) Progress() report.Progress {
	return report.Cycle(s.Now, s.Settings, s.History, s.Session)
}

// Analytics returns the current billing cycle's averages.
func (s Snapshot) Analytics() report.Stats {
	return report.Analytics(s.Now, s.Settings, s.History, s.Session)
}

// Snapshot loads every record.
func (t *Tracker) Snapshot() (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() (Snapshot, error) {
	now := t.now()
	settings, err := t.repo.LoadSettings()
	if err != nil {
		return Snapshot{}, err
	}
	sess, err := t.loadSessionLocked(now)
	if err != nil {
		return Snapshot{}, err
	}
	l, err := t.repo.LoadHistory()
	if err != nil {
		return Snapshot{}, err
	}
	leaves, err := t.repo.LoadLeaves()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Now: now, Settings: settings, Session: sess, History: l, Leaves: leaves}, nil
}

// loadSessionLocked loads today's session and persists a rollover reset.
func (t *Tracker) loadSessionLocked(now time.Time) (session.Session, error) {
	sess, rolled, err := t.repo.LoadSession(model.DayOf(now))
	if err != nil {
		return sess, err
	}
	if rolled {
		if err := t.repo.SaveSession(sess); err != nil {
			return sess, err
		}
	}
	return sess, nil
}

// CheckIn opens a session now.
func (t *Tracker) CheckIn() (session.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	sess, err := t.loadSessionLocked(now)
	if err != nil {
		return sess, err
	}
	if err := sess.CheckIn(now); err != nil {
		return sess, err
	}
	if err := t.repo.SaveSession(sess); err != nil {
		return sess, err
	}
	logger.Info("checked in", "at", now)
	t.rearmLocked(sess, now)
	return sess, nil
}

// BreakIn starts a break now. It reports false if a break was already running.
func (t *Tracker) BreakIn() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	sess, err := t.loadSessionLocked(now)
	if err != nil {
		return false, err
	}
	started, err := sess.BreakIn(now)
	if err != nil || !started {
		return false, err
	}
	logger.Info("break started", "at", now)
	return true, t.repo.SaveSession(sess)
}

// BreakOut ends the running break now and returns it.
func (t *Tracker) BreakOut() (model.Break, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	sess, err := t.loadSessionLocked(now)
	if err != nil {
		return model.Break{}, false, err
	}
	b, ok := sess.BreakOut(now)
	if !ok {
		return model.Break{}, false, nil
	}
	logger.Info("break ended", "duration", b.Duration.Duration())
	return b, true, t.repo.SaveSession(sess)
}

// CheckOut closes the session now and records the day in history.
func (t *Tracker) CheckOut() (model.HistoryEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	settings, err := t.repo.LoadSettings()
	if err != nil {
		return model.HistoryEntry{}, err
	}
	sess, err := t.loadSessionLocked(now)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	entry, err := sess.CheckOut(now, settings.OvertimeThreshold())
	if err != nil {
		return model.HistoryEntry{}, err
	}

	l, err := t.repo.LoadHistory()
	if err != nil {
		return model.HistoryEntry{}, err
	}
	l.Put(entry)
	if err := t.repo.SaveHistory(l); err != nil {
		return model.HistoryEntry{}, err
	}
	if err := t.repo.SaveSession(sess); err != nil {
		return model.HistoryEntry{}, err
	}
	logger.Info("checked out", "day", entry.Date, "worked", entry.TotalWorked.Duration())
	t.rearmLocked(sess, now)
	return entry, nil
}

// Tick computes today's statistics and sends the overtime alert the first
// time overtime is reached in a session.
func (t *Tracker) Tick() (report.TodayStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, err := t.snapshotLocked()
	if err != nil {
		return report.TodayStats{}, err
	}
	st := snap.Today()
	if !report.ShouldAlertOvertime(snap.Settings, snap.Session, st) {
		return st, nil
	}

	if err := t.notifier.Notify("Overtime Alert", "You are now in overtime!"); err != nil {
		logger.Warn("overtime alert not delivered", "err", err)
	}
	snap.Session.OvertimeAlerted = true
	return st, t.repo.SaveSession(snap.Session)
}

// Rearm reloads the records and re-arms the checkout reminder.
func (t *Tracker) Rearm() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	sess, err := t.loadSessionLocked(now)
	if err != nil {
		return err
	}
	t.rearmLocked(sess, now)
	return nil
}

func (t *Tracker) rearmLocked(sess session.Session, now time.Time) {
	if t.reminders == nil {
		return
	}
	settings, err := t.repo.LoadSettings()
	if err != nil {
		logger.Warn("reminder not armed", "err", err)
		return
	}
	t.reminders.Rearm(settings, sess, now)
}

// Settings returns the current settings.
func (t *Tracker) Settings() (model.Settings, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.repo.LoadSettings()
}

// UpdateSettings applies change to the stored settings, saves the
// normalized result and re-arms the reminder.
func (t *Tracker) UpdateSettings(change func(*model.Settings)) (model.Settings, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.repo.LoadSettings()
	if err != nil {
		return s, err
	}
	change(&s)
	s = s.Normalize()
	if err := t.repo.SaveSettings(s); err != nil {
		return s, err
	}

	now := t.now()
	sess, err := t.loadSessionLocked(now)
	if err != nil {
		return s, err
	}
	t.rearmLocked(sess, now)
	return s, nil
}

// EditEntry writes a manual entry for day from wall-clock check-in and
// check-out times and a total break, replacing any entry for that day.
func (t *Tracker) EditEntry(day model.Day, checkIn, checkOut, breaks time.Duration) (model.HistoryEntry, error) {
	if day.IsZero() {
		return model.HistoryEntry{}, fmt.Errorf("%w: missing date", ErrInvalidEntry)
	}
	if breaks < 0 {
		return model.HistoryEntry{}, fmt.Errorf("%w: negative break", ErrInvalidEntry)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	in := timecalc.AtClock(day.Time(), checkIn)
	out := timecalc.AtClock(day.Time(), checkOut)
	if out.Sub(in)-breaks < 0 {
		return model.HistoryEntry{}, fmt.Errorf("%w: check-out must be after check-in once breaks are deducted", ErrInvalidEntry)
	}

	settings, err := t.repo.LoadSettings()
	if err != nil {
		return model.HistoryEntry{}, err
	}
	l, err := t.repo.LoadHistory()
	if err != nil {
		return model.HistoryEntry{}, err
	}
	entry := history.Finalize(in, out, nil, breaks, settings.OvertimeThreshold())
	l.Put(entry)
	if err := t.repo.SaveHistory(l); err != nil {
		return model.HistoryEntry{}, err
	}
	logger.Info("entry saved", "day", day, "worked", entry.TotalWorked.Duration())
	return entry, nil
}

// DeleteEntry removes the history entry for day.
func (t *Tracker) DeleteEntry(day model.Day) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, err := t.repo.LoadHistory()
	if err != nil {
		return err
	}
	if !l.Delete(day) {
		return fmt.Errorf("%w: no entry on %s", ErrNotFound, day)
	}
	return t.repo.SaveHistory(l)
}

// AddLeave records a leave on day.
func (t *Tracker) AddLeave(day model.Day, leaveType, notes string) (model.LeaveEntry, error) {
	if day.IsZero() {
		return model.LeaveEntry{}, fmt.Errorf("%w: missing date", ErrInvalidEntry)
	}
	if leaveType == "" {
		leaveType = model.LeaveOther
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	leaves, err := t.repo.LoadLeaves()
	if err != nil {
		return model.LeaveEntry{}, err
	}
	lv := model.LeaveEntry{ID: uuid.NewString(), Date: day, Type: leaveType, Notes: notes}
	leaves = append(leaves, lv)
	if err := t.repo.SaveLeaves(leaves); err != nil {
		return model.LeaveEntry{}, err
	}
	return lv, nil
}

// DeleteLeave removes the leave with the given ID or, when ref is a date,
// every leave on that day. It returns how many were removed.
func (t *Tracker) DeleteLeave(ref string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaves, err := t.repo.LoadLeaves()
	if err != nil {
		return 0, err
	}

	match := func(lv model.LeaveEntry) bool { return lv.ID != "" && lv.ID == ref }
	if day, err := model.ParseDay(ref); err == nil {
		match = func(lv model.LeaveEntry) bool { return lv.Date == day }
	}

	kept := leaves[:0:0]
	for _, lv := range leaves {
		if !match(lv) {
			kept = append(kept, lv)
		}
	}
	removed := len(leaves) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("%w: no leave matches %q", ErrNotFound, ref)
	}
	return removed, t.repo.SaveLeaves(kept)
}

// Leaves returns all leaves ordered by date.
func (t *Tracker) Leaves() ([]model.LeaveEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaves, err := t.repo.LoadLeaves()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].Date.Before(leaves[j].Date) })
	return leaves, nil
}

// Clear deletes every record and cancels the pending reminder.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.reminders != nil {
		t.reminders.Cancel()
	}
	if err := t.repo.Clear(); err != nil {
		return err
	}
	logger.Info("all data cleared")
	return nil
}

// Backup returns every record as a backup document stamped now.
func (t *Tracker) Backup() (export.Backup, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, err := t.snapshotLocked()
	if err != nil {
		return export.Backup{}, err
	}
	return export.NewBackup(snap.Now, snap.History, snap.Settings, snap.Leaves), nil
}

// ImportResult summarizes an import.
type ImportResult struct {
	Kind importer.Kind
	// Added and Replaced count history days; for a backup every stored day
	// counts as added.
	Added    int
	Replaced int
	Settings bool
	Leaves   int
	Skipped  []importer.RowError
}

// Import detects the format of data by name and content and applies it.
func (t *Tracker) Import(name string, data []byte) (ImportResult, error) {
	if importer.Detect(name, data) == importer.KindBackup {
		return t.ImportBackup(bytes.NewReader(data))
	}
	return t.ImportCSV(bytes.NewReader(data))
}

// ImportBackup replaces each store present in the backup document. Absent
// stores are left untouched, and nothing is written unless the whole
// document parses.
func (t *Tracker) ImportBackup(r io.Reader) (ImportResult, error) {
	b, err := importer.ParseBackup(r)
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Kind: importer.KindBackup}
	if b.Empty() {
		return res, fmt.Errorf("%w: no history, settings or leaves", importer.ErrInvalidBackup)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if b.History != nil {
		if err := t.repo.SaveHistory(b.History); err != nil {
			return res, err
		}
		res.Added = len(b.History)
	}
	if b.Settings != nil {
		if err := t.repo.SaveSettings(*b.Settings); err != nil {
			return res, err
		}
		res.Settings = true
	}
	if b.Leaves != nil {
		if err := t.repo.SaveLeaves(b.Leaves); err != nil {
			return res, err
		}
		res.Leaves = len(b.Leaves)
	}
	logger.Info("backup imported", "days", res.Added, "settings", res.Settings, "leaves", res.Leaves)

	now := t.now()
	sess, err := t.loadSessionLocked(now)
	if err != nil {
		return res, err
	}
	t.rearmLocked(sess, now)
	return res, nil
}

// ImportCSV merges the rows of a CSV file into history, overwriting days
// that already have an entry.
func (t *Tracker) ImportCSV(r io.Reader) (ImportResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	settings, err := t.repo.LoadSettings()
	if err != nil {
		return ImportResult{}, err
	}
	parsed, err := importer.ParseCSV(r, t.now(), settings.OvertimeThreshold())
	if err != nil {
		return ImportResult{Kind: importer.KindCSV}, err
	}

	l, err := t.repo.LoadHistory()
	if err != nil {
		return ImportResult{}, err
	}
	before := len(l)
	replaced := l.Merge(parsed.Entries)
	if err := t.repo.SaveHistory(l); err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{
		Kind:     importer.KindCSV,
		Added:    len(l) - before,
		Replaced: replaced,
		Skipped:  parsed.Skipped,
	}
	logger.Info("csv imported", "added", res.Added, "replaced", res.Replaced, "skipped", len(res.Skipped))
	return res, nil
}

package storage

import (
	"encoding/json"
	"fmt"

	"github.com/Tiliavir/work-hours-tracker/internal/history"
	"github.com/Tiliavir/work-hours-tracker/internal/logger"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/session"
)

// Record keys. They match the keys used by existing stores and backups.
const (
	KeyState    = "workState"
	KeyHistory  = "workHistory"
	KeySettings = "workSettings"
	KeyLeaves   = "leaves"
)

// Keys lists every record key in a fixed order.
var Keys = []string{KeyState, KeyHistory, KeySettings, KeyLeaves}

// Repository loads and saves the typed records on top of a KV store.
// Undecodable records are moved aside to "<key>.corrupt" and replaced by
// their defaults, so a damaged store never blocks the tracker.
type Repository struct {
	kv KV
}

// NewRepository wraps kv.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// Close closes the underlying store.
func (r *Repository) Close() error {
	return r.kv.Close()
}

// load decodes key into v. It reports false when the key is absent or was
// quarantined, in which case v is left as the caller initialized it.
func (r *Repository) load(key string, v any) (bool, error) {
	data, ok, err := r.kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		backup := key + ".corrupt"
		logger.Warn("corrupt record reset to defaults", "key", key, "backup", backup, "err", err)
		if err := r.kv.Set(backup, data); err != nil {
			return false, fmt.Errorf("back up corrupt %s: %w", key, err)
		}
		if err := r.kv.Delete(key); err != nil {
			return false, fmt.Errorf("reset corrupt %s: %w", key, err)
		}
		return false, nil
	}
	return true, nil
}

func (r *Repository) save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling %s: %w", key, err)
	}
	return r.kv.Set(key, data)
}

// LoadSettings returns the stored settings overlaid on the defaults.
func (r *Repository) LoadSettings() (model.Settings, error) {
	s := model.DefaultSettings()
	ok, err := r.load(KeySettings, &s)
	if err != nil {
		return model.DefaultSettings(), err
	}
	if !ok {
		return model.DefaultSettings(), nil
	}
	return s.Normalize(), nil
}

// SaveSettings normalizes and stores s.
func (r *Repository) SaveSettings(s model.Settings) error {
	return r.save(KeySettings, s.Normalize())
}

// LoadSession returns the stored session for today. A session saved on
// another day is discarded; the second result reports that rollover.
func (r *Repository) LoadSession(today model.Day) (session.Session, bool, error) {
	var s session.Session
	ok, err := r.load(KeyState, &s)
	if err != nil {
		return session.New(today), false, err
	}
	if !ok {
		return session.New(today), false, nil
	}
	restored, rolled := session.Restore(s, today)
	if rolled {
		logger.Info("discarding session from previous day", "day", s.CurrentDate, "checkedIn", s.IsCheckedIn)
	}
	return restored, rolled, nil
}

// SaveSession stores s.
func (r *Repository) SaveSession(s session.Session) error {
	return r.save(KeyState, s)
}

// LoadHistory returns the ledger, empty when nothing is stored.
func (r *Repository) LoadHistory() (history.Ledger, error) {
	l := history.Ledger{}
	ok, err := r.load(KeyHistory, &l)
	if err != nil || !ok {
		return history.Ledger{}, err
	}
	for day, e := range l {
		e.Date = day
		if e.Breaks == nil {
			e.Breaks = []model.Break{}
		}
		l[day] = e
	}
	return l, nil
}

// SaveHistory stores the whole ledger.
func (r *Repository) SaveHistory(l history.Ledger) error {
	if l == nil {
		l = history.Ledger{}
	}
	return r.save(KeyHistory, l)
}

// LoadLeaves returns the stored leaves, empty when nothing is stored.
func (r *Repository) LoadLeaves() ([]model.LeaveEntry, error) {
	leaves := []model.LeaveEntry{}
	ok, err := r.load(KeyLeaves, &leaves)
	if err != nil || !ok {
		return []model.LeaveEntry{}, err
	}
	return leaves, nil
}

// SaveLeaves stores leaves.
func (r *Repository) SaveLeaves(leaves []model.LeaveEntry) error {
	if leaves == nil {
		leaves = []model.LeaveEntry{}
	}
	return r.save(KeyLeaves, leaves)
}

// Clear deletes every key in the store, quarantined copies included.
func (r *Repository) Clear() error {
	keys, err := r.kv.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := r.kv.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

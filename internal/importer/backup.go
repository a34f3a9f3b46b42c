package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Tiliavir/work-hours-tracker/internal/history"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
)

var (
	// ErrInvalidBackup is returned when a backup document cannot be parsed.
	ErrInvalidBackup = errors.New("invalid backup file")
	// ErrMissingColumns is returned when a CSV header lacks a required column.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrNoValidRows is returned when no CSV row could be imported.
	ErrNoValidRows = errors.New("no valid rows")
)

// Backup is a parsed backup document. A nil field means the key was absent
// (or null) and the corresponding store must be left untouched.
type Backup struct {
	History    history.Ledger
	Settings   *model.Settings
	Leaves     []model.LeaveEntry
	ExportDate string
}

// Empty reports whether the backup carries nothing to write.
func (b Backup) Empty() bool {
	return b.History == nil && b.Settings == nil && b.Leaves == nil
}

type rawBackup struct {
	History    json.RawMessage `json:"history"`
	Settings   json.RawMessage `json:"settings"`
	Leaves     json.RawMessage `json:"leaves"`
	ExportDate string          `json:"exportDate"`
}

// ParseBackup decodes a whole backup document. Nothing is returned unless
// every present blob decodes, so callers never write a partial import.
func ParseBackup(r io.Reader) (Backup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Backup{}, fmt.Errorf("read backup: %w", err)
	}

	var raw rawBackup
	if err := json.Unmarshal(data, &raw); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	b := Backup{ExportDate: raw.ExportDate}
	if present(raw.History) {
		l := history.Ledger{}
		if err := json.Unmarshal(raw.History, &l); err != nil {
			return Backup{}, fmt.Errorf("%w: history: %v", ErrInvalidBackup, err)
		}
		b.History = KeyDates(l)
	}
	if present(raw.Settings) {
		s := model.DefaultSettings()
		if err := json.Unmarshal(raw.Settings, &s); err != nil {
			return Backup{}, fmt.Errorf("%w: settings: %v", ErrInvalidBackup, err)
		}
		s = s.Normalize()
		b.Settings = &s
	}
	if present(raw.Leaves) {
		leaves := []model.LeaveEntry{}
		if err := json.Unmarshal(raw.Leaves, &leaves); err != nil {
			return Backup{}, fmt.Errorf("%w: leaves: %v", ErrInvalidBackup, err)
		}
		b.Leaves = leaves
	}
	return b, nil
}

// KeyDates makes every entry's Date agree with its map key. Stores written
// by older versions carry a locale-formatted date field, or none.
func KeyDates(l history.Ledger) history.Ledger {
	for day, e := range l {
		e.Date = day
		if e.Breaks == nil {
			e.Breaks = []model.Break{}
		}
		l[day] = e
	}
	return l
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// Kind is the detected format of an import file.
type Kind int

const (
	KindCSV Kind = iota
	KindBackup
)

// Detect picks the import format from the file extension, falling back to
// the first non-blank byte of the content.
func Detect(name string, data []byte) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return KindBackup
	case ".csv":
		return KindCSV
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return KindBackup
	}
	return KindCSV
}

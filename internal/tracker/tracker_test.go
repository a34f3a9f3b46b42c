package tracker_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/export"
	"github.com/Tiliavir/work-hours-tracker/internal/importer"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/notify"
	"github.com/Tiliavir/work-hours-tracker/internal/reminder"
	"github.com/Tiliavir/work-hours-tracker/internal/session"
	"github.com/Tiliavir/work-hours-tracker/internal/storage"
	"github.com/Tiliavir/work-hours-tracker/internal/tracker"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) set(h, m int) {
	c.t = time.Date(c.t.Year(), c.t.Month(), c.t.Day(), h, m, 0, 0, time.Local)
}

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeScheduler struct {
	next  reminder.Handle
	tasks map[reminder.Handle]time.Time
}

func (f *fakeScheduler) ScheduleAt(at time.Time, fn func()) reminder.Handle {
	f.next++
	f.tasks[f.next] = at
	return f.next
}

func (f *fakeScheduler) Cancel(h reminder.Handle) { delete(f.tasks, h) }

type fixture struct {
	tr    *tracker.Tracker
	repo  *storage.Repository
	clock *clock
	rec   *notify.Recorder
	sched *fakeScheduler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	repo := storage.NewRepository(fs)
	t.Cleanup(func() { repo.Close() })

	c := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)}
	rec := &notify.Recorder{}
	sched := &fakeScheduler{tasks: map[reminder.Handle]time.Time{}}
	tr := tracker.New(repo,
		tracker.WithClock(c.now),
		tracker.WithNotifier(rec),
		tracker.WithReminders(reminder.New(sched, rec)),
	)
	return fixture{tr: tr, repo: repo, clock: c, rec: rec, sched: sched}
}

func TestWorkday(t *testing.T) {
	f := newFixture(t)

	if _, err := f.tr.CheckIn(); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if _, err := f.tr.CheckIn(); !errors.Is(err, session.ErrAlreadyCheckedIn) {
		t.Errorf("second CheckIn err = %v", err)
	}

	f.clock.set(12, 0)
	if ok, err := f.tr.BreakIn(); err != nil || !ok {
		t.Fatalf("BreakIn = %v, %v", ok, err)
	}
	f.clock.set(12, 30)
	b, ok, err := f.tr.BreakOut()
	if err != nil || !ok || b.Duration.Duration() != 30*time.Minute {
		t.Fatalf("BreakOut = %+v, %v, %v", b, ok, err)
	}

	f.clock.set(18, 0)
	entry, err := f.tr.CheckOut()
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if got := entry.TotalWorked.Duration(); got != 8*time.Hour+30*time.Minute {
		t.Errorf("worked = %v", got)
	}
	if got := entry.Overtime.Duration(); got != 30*time.Minute {
		t.Errorf("overtime = %v", got)
	}

	snap, err := f.tr.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Session.IsCheckedIn {
		t.Error("session still checked in")
	}
	if _, ok := snap.History.Get(model.NewDay(2024, 3, 1)); !ok {
		t.Error("entry not stored")
	}
	if st := snap.Today(); st.Worked != 8*time.Hour+30*time.Minute {
		t.Errorf("today worked = %v", st.Worked)
	}
}

func TestNowFollowsClock(t *testing.T) {
	f := newFixture(t)
	f.clock.advance(36 * time.Hour)
	if got, want := f.tr.Now(), time.Date(2024, 3, 2, 21, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("Now = %v, want %v", got, want)
	}
}

func TestBreakWhileIdle(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tr.BreakIn(); !errors.Is(err, session.ErrNotCheckedIn) {
		t.Errorf("BreakIn err = %v", err)
	}
	if _, ok, err := f.tr.BreakOut(); ok || err != nil {
		t.Errorf("BreakOut = %v, %v", ok, err)
	}
	if _, err := f.tr.CheckOut(); !errors.Is(err, session.ErrNotCheckedIn) {
		t.Errorf("CheckOut err = %v", err)
	}
}

func TestSessionRollsOverAtMidnight(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tr.CheckIn(); err != nil {
		t.Fatal(err)
	}
	f.clock.advance(24 * time.Hour)

	snap, err := f.tr.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Session.IsCheckedIn || snap.Session.CurrentDate != model.NewDay(2024, 3, 2) {
		t.Errorf("session = %+v, want idle on 2024-03-02", snap.Session)
	}
	if len(snap.History) != 0 {
		t.Error("rolled over session must not create history")
	}

	// The reset is persisted.
	stored, rolled, err := f.repo.LoadSession(model.NewDay(2024, 3, 2))
	if err != nil || rolled || stored.IsCheckedIn {
		t.Errorf("stored = %+v, rolled %v, err %v", stored, rolled, err)
	}
}

func TestTickAlertsOnce(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tr.UpdateSettings(func(s *model.Settings) { s.OvertimeAlertEnabled = true }); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tr.CheckIn(); err != nil {
		t.Fatal(err)
	}

	f.clock.set(16, 0)
	if _, err := f.tr.Tick(); err != nil {
		t.Fatal(err)
	}
	if n := len(f.rec.Sent()); n != 0 {
		t.Fatalf("alert before overtime: %d", n)
	}

	f.clock.set(17, 30)
	st, err := f.tr.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if st.Overtime != 30*time.Minute {
		t.Errorf("overtime = %v", st.Overtime)
	}
	f.clock.set(17, 31)
	if _, err := f.tr.Tick(); err != nil {
		t.Fatal(err)
	}
	sent := f.rec.Sent()
	if len(sent) != 1 || sent[0].Title != "Overtime Alert" {
		t.Errorf("sent = %+v, want one overtime alert", sent)
	}
}

func TestTickAfterCheckoutStaysQuiet(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tr.UpdateSettings(func(s *model.Settings) { s.OvertimeAlertEnabled = true }); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tr.CheckIn(); err != nil {
		t.Fatal(err)
	}
	f.clock.set(17, 30)
	if _, err := f.tr.Tick(); err != nil {
		t.Fatal(err)
	}
	f.clock.set(17, 35)
	if _, err := f.tr.CheckOut(); err != nil {
		t.Fatal(err)
	}

	f.clock.set(17, 36)
	st, err := f.tr.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if st.Overtime != 35*time.Minute {
		t.Errorf("overtime after checkout = %v", st.Overtime)
	}
	if sent := f.rec.Sent(); len(sent) != 1 {
		t.Errorf("sent = %+v, want one overtime alert", sent)
	}
}

func TestReminderFollowsState(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tr.CheckIn(); err != nil {
		t.Fatal(err)
	}
	if len(f.sched.tasks) != 0 {
		t.Fatal("reminder armed while disabled")
	}

	if _, err := f.tr.UpdateSettings(func(s *model.Settings) { s.CheckoutReminderEnabled = true }); err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 3, 1, 18, 0, 0, 0, time.Local)
	if len(f.sched.tasks) != 1 {
		t.Fatalf("pending = %d, want 1", len(f.sched.tasks))
	}
	for _, at := range f.sched.tasks {
		if !at.Equal(want) {
			t.Errorf("armed at %v, want %v", at, want)
		}
	}

	if _, err := f.tr.UpdateSettings(func(s *model.Settings) { s.DailyHours = 6 }); err != nil {
		t.Fatal(err)
	}
	for _, at := range f.sched.tasks {
		if !at.Equal(want.Add(-2 * time.Hour)) {
			t.Errorf("re-armed at %v", at)
		}
	}

	f.clock.set(15, 0)
	if _, err := f.tr.CheckOut(); err != nil {
		t.Fatal(err)
	}
	if len(f.sched.tasks) != 0 {
		t.Errorf("pending after checkout = %d", len(f.sched.tasks))
	}
}

func TestEditAndDeleteEntry(t *testing.T) {
	f := newFixture(t)
	day := model.NewDay(2024, 2, 12)

	e, err := f.tr.EditEntry(day, 8*time.Hour, 17*time.Hour, 45*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if e.TotalWorked.Duration() != 8*time.Hour+15*time.Minute || e.Overtime.Duration() != 15*time.Minute {
		t.Errorf("entry = %+v", e)
	}
	if e.Date != day || e.CheckIn.Hour() != 8 {
		t.Errorf("entry keyed %v at %v", e.Date, e.CheckIn)
	}

	if _, err := f.tr.EditEntry(day, 17*time.Hour, 8*time.Hour, 0); !errors.Is(err, tracker.ErrInvalidEntry) {
		t.Errorf("reversed times err = %v", err)
	}
	if _, err := f.tr.EditEntry(day, 9*time.Hour, 10*time.Hour, 2*time.Hour); !errors.Is(err, tracker.ErrInvalidEntry) {
		t.Errorf("break longer than span err = %v", err)
	}

	if err := f.tr.DeleteEntry(day); err != nil {
		t.Fatal(err)
	}
	if err := f.tr.DeleteEntry(day); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestLeaves(t *testing.T) {
	f := newFixture(t)
	later, err := f.tr.AddLeave(model.NewDay(2024, 3, 20), model.LeaveVacation, "beach")
	if err != nil {
		t.Fatal(err)
	}
	if later.ID == "" {
		t.Error("leave has no id")
	}
	if _, err := f.tr.AddLeave(model.NewDay(2024, 3, 4), model.LeaveSick, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tr.AddLeave(model.NewDay(2024, 3, 4), "", "dentist"); err != nil {
		t.Fatal(err)
	}

	leaves, err := f.tr.Leaves()
	if err != nil {
		t.Fatal(err)
	}
	if len(leaves) != 3 || leaves[0].Date != model.NewDay(2024, 3, 4) || leaves[2].ID != later.ID {
		t.Errorf("leaves = %+v", leaves)
	}
	if leaves[1].Type != model.LeaveOther {
		t.Errorf("empty type stored as %q", leaves[1].Type)
	}

	if n, err := f.tr.DeleteLeave("2024-03-04"); err != nil || n != 2 {
		t.Errorf("delete by date = %d, %v", n, err)
	}
	if n, err := f.tr.DeleteLeave(later.ID); err != nil || n != 1 {
		t.Errorf("delete by id = %d, %v", n, err)
	}
	if _, err := f.tr.DeleteLeave(later.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("delete missing err = %v", err)
	}
}

func TestImportCSVMerges(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tr.EditEntry(model.NewDay(2024, 3, 1), 10*time.Hour, 11*time.Hour, 0); err != nil {
		t.Fatal(err)
	}

	csv := "Date,Check In,Check Out,Break Minutes\n" +
		"2024-03-01,09:00,17:30,30\n" +
		"2024-03-04,08:00,16:00,0\n" +
		"garbage,09:00,17:00,0\n"
	res, err := f.tr.Import("hours.csv", []byte(csv))
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != importer.KindCSV || res.Added != 1 || res.Replaced != 1 || len(res.Skipped) != 1 {
		t.Errorf("result = %+v", res)
	}

	snap, err := f.tr.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	e, _ := snap.History.Get(model.NewDay(2024, 3, 1))
	if e.TotalWorked.Duration() != 8*time.Hour {
		t.Errorf("replaced entry worked = %v", e.TotalWorked.Duration())
	}
}

func TestBackupRoundTrip(t *testing.T) {
	src := newFixture(t)
	if _, err := src.tr.EditEntry(model.NewDay(2024, 2, 12), 8*time.Hour, 17*time.Hour, time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, err := src.tr.AddLeave(model.NewDay(2024, 2, 13), model.LeaveHoliday, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := src.tr.UpdateSettings(func(s *model.Settings) { s.MonthStartDay, s.MonthEndDay = 25, 24 }); err != nil {
		t.Fatal(err)
	}

	b, err := src.tr.Backup()
	if err != nil {
		t.Fatal(err)
	}
	var buf strings.Builder
	if err := export.WriteBackup(&buf, b); err != nil {
		t.Fatal(err)
	}

	dst := newFixture(t)
	res, err := dst.tr.Import("backup.json", []byte(buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != importer.KindBackup || res.Added != 1 || !res.Settings || res.Leaves != 1 {
		t.Errorf("result = %+v", res)
	}
	snap, err := dst.tr.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Settings.MonthStartDay != 25 || len(snap.Leaves) != 1 || len(snap.History) != 1 {
		t.Errorf("imported snapshot = %+v", snap)
	}
}

func TestImportBackupLeavesAbsentStores(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tr.AddLeave(model.NewDay(2024, 3, 4), model.LeaveSick, ""); err != nil {
		t.Fatal(err)
	}

	if _, err := f.tr.ImportBackup(strings.NewReader(`{"settings":{"dailyHours":7}}`)); err != nil {
		t.Fatal(err)
	}
	snap, err := f.tr.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Settings.DailyHours != 7 || len(snap.Leaves) != 1 {
		t.Errorf("settings %v, leaves %d", snap.Settings.DailyHours, len(snap.Leaves))
	}

	if _, err := f.tr.ImportBackup(strings.NewReader(`{"history":{"2024-03-01":{"checkIn":1}}}`)); !errors.Is(err, importer.ErrInvalidBackup) {
		t.Errorf("bad history err = %v", err)
	}
	if _, err := f.tr.ImportBackup(strings.NewReader(`{}`)); !errors.Is(err, importer.ErrInvalidBackup) {
		t.Errorf("empty backup err = %v", err)
	}
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tr.UpdateSettings(func(s *model.Settings) { s.CheckoutReminderEnabled = true }); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tr.CheckIn(); err != nil {
		t.Fatal(err)
	}
	if err := f.tr.Clear(); err != nil {
		t.Fatal(err)
	}
	if len(f.sched.tasks) != 0 {
		t.Error("reminder survived clear")
	}
	snap, err := f.tr.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Session.IsCheckedIn || snap.Settings != model.DefaultSettings() {
		t.Errorf("snapshot after clear = %+v", snap)
	}
}

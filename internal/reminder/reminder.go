package reminder

import (
	"sync"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/logger"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/notify"
	"github.com/Tiliavir/work-hours-tracker/internal/session"
)

// Handle identifies a scheduled task. The zero Handle is never issued.
type Handle uint64

// Scheduler runs callbacks at a given instant until cancelled.
type Scheduler interface {
	ScheduleAt(at time.Time, fn func()) Handle
	// Cancel stops h. Cancelling a fired or unknown handle is a no-op.
	Cancel(h Handle)
}

// TimerScheduler schedules callbacks on runtime timers.
type TimerScheduler struct {
	mu     sync.Mutex
	now    func() time.Time
	next   Handle
	timers map[Handle]*time.Timer
}

// NewTimerScheduler returns a scheduler measuring delays against the wall
// clock.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{now: time.Now, timers: map[Handle]*time.Timer{}}
}

// ScheduleAt runs fn at at, or immediately when at has passed.
func (s *TimerScheduler) ScheduleAt(at time.Time, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	h := s.next
	s.timers[h] = time.AfterFunc(max(0, at.Sub(s.now())), func() {
		s.mu.Lock()
		_, live := s.timers[h]
		delete(s.timers, h)
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	return h
}

func (s *TimerScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}

// Pending returns the number of tasks that have not fired or been cancelled.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending task.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, t := range s.timers {
		t.Stop()
		delete(s.timers, h)
	}
}

// CheckoutGrace is added to the daily hours before the checkout reminder.
const CheckoutGrace = time.Hour

// CheckoutAt returns when the checkout reminder for sess is due. It reports
// false when the reminder is disabled or nobody is checked in.
func CheckoutAt(s model.Settings, sess session.Session) (time.Time, bool) {
	if !s.CheckoutReminderEnabled || !sess.IsCheckedIn || sess.CheckInTime == nil {
		return time.Time{}, false
	}
	return sess.CheckInTime.Add(s.DailyTarget() + CheckoutGrace), true
}

// Reminders owns the pending checkout reminder.
type Reminders struct {
	sched    Scheduler
	notifier notify.Notifier

	mu     sync.Mutex
	handle Handle
	at     time.Time
}

// New returns reminders that schedule on sched and deliver through n.
func New(sched Scheduler, n notify.Notifier) *Reminders {
	return &Reminders{sched: sched, notifier: n}
}

// Rearm cancels the pending reminder, then arms a new one for the current
// settings and session if it is due after now. It returns the armed time.
func (r *Reminders) Rearm(s model.Settings, sess session.Session, now time.Time) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()
	at, ok := CheckoutAt(s, sess)
	if !ok || !at.After(now) {
		return time.Time{}, false
	}

	var h Handle
	h = r.sched.ScheduleAt(at, func() {
		r.mu.Lock()
		if r.handle != h {
			r.mu.Unlock()
			return
		}
		r.handle = 0
		r.at = time.Time{}
		r.mu.Unlock()
		if err := r.notifier.Notify("Checkout Reminder", "Time to check out for the day!"); err != nil {
			logger.Warn("checkout reminder not delivered", "err", err)
		}
	})
	r.handle, r.at = h, at
	logger.Debug("checkout reminder armed", "at", at)
	return at, true
}

// Cancel drops the pending reminder, if any.
func (r *Reminders) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
}

// Next returns the time of the pending reminder.
func (r *Reminders) Next() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.at, r.handle != 0
}

func (r *Reminders) cancelLocked() {
	if r.handle != 0 {
		r.sched.Cancel(r.handle)
	}
	r.handle = 0
	r.at = time.Time{}
}

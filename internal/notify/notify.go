package notify

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/Tiliavir/work-hours-tracker/internal/logger"
)

// Notifier sends a titled message to the user.
type Notifier interface {
	Notify(title, body string) error
}

// AppName is shown by the desktop notification daemon.
const AppName = "Work Hours Tracker"

var appNameOnce sync.Once

// Desktop sends native desktop notifications.
type Desktop struct {
	// Urgent plays the alert sound as well.
	Urgent bool
}

func (d Desktop) Notify(title, body string) error {
	appNameOnce.Do(func() { beeep.AppName = AppName })
	if d.Urgent {
		return beeep.Alert(title, body, "")
	}
	return beeep.Notify(title, body, "")
}

// Log records notifications in the log file only.
type Log struct{}

func (Log) Notify(title, body string) error {
	logger.Info("notification", "title", title, "body", body)
	return nil
}

// Fallback tries Primary and, if it fails, logs the failure and delivers
// through Secondary.
type Fallback struct {
	Primary   Notifier
	Secondary Notifier
}

func (f Fallback) Notify(title, body string) error {
	err := f.Primary.Notify(title, body)
	if err == nil {
		return nil
	}
	logger.Warn("notification failed, falling back", "err", err)
	return f.Secondary.Notify(title, body)
}

// Recorder keeps notifications in memory. Tests use it to assert delivery.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
}

// Message is one recorded notification.
type Message struct {
	Title string
	Body  string
}

func (r *Recorder) Notify(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Message{Title: title, Body: body})
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

package compose

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

type ToastStatus string

const (
	ToastLoading ToastStatus = "loading"
	ToastSuccess ToastStatus = "success"
	ToastFailure ToastStatus = "failure"
)

// Toast is a transient user-facing status notification. Updates for the
// same submission share an ID, so a renderer replaces rather than stacks.
type Toast struct {
	ID      string
	Status  ToastStatus
	Message string
}

// Notifier displays toasts. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(toast Toast)
}

// LogNotifier writes toasts to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(toast Toast) {
	entry := log.WithFields(log.Fields{"toast": toast.ID, "status": toast.Status})
	switch toast.Status {
	case ToastFailure:
		entry.Warn(toast.Message)
	default:
		entry.Info(toast.Message)
	}
}

// Recorder keeps every toast it receives. Useful for tests and for
// renderers that poll.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(toast Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast)
}

func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

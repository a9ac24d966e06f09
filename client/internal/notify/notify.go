package notify

import (
	"fmt"
	"io"
	"sync"
)

// Level of a notice.
type Level string

const (
	LevelInfo    = Level("info")
	LevelSuccess = Level("success")
	LevelError   = Level("error")
)

// Notice is a transient message shown to the user.
type Notice struct {
	Level   Level
	Message string
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(Notice)
}

func Info(n Notifier, msg string)    { n.Notify(Notice{Level: LevelInfo, Message: msg}) }
func Success(n Notifier, msg string) { n.Notify(Notice{Level: LevelSuccess, Message: msg}) }
func Error(n Notifier, msg string)   { n.Notify(Notice{Level: LevelError, Message: msg}) }

// Writer prints notices, one per line.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a notifier printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", notice.Level, notice.Message)
}

// Recorder keeps notices in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(notice Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

// Notices returns the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Messages returns the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		res = append(res, n.Message)
	}
	return res
}

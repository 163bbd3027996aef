package server

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
)

// ConsoleMessage is one log line of a render session, forwarded to the
// browser console over SSE
type ConsoleMessage struct {
	Session   string    `json:"session"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger for one session. Lines go to the server
// log tagged with the session ID and, without blocking, to the console channel.
type WebLogger struct {
	session     string
	consoleChan chan<- ConsoleMessage
	out         io.Writer
}

// NewWebLogger creates a web logger for a session
func NewWebLogger(session string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		session:     session,
		consoleChan: consoleChan,
		out:         os.Stdout,
	}
}

// Printf implements core.Logger
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(wl.out, "[%s] %s", wl.session, message)

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		Session:   wl.session,
		Message:   message,
		Timestamp: time.Now(),
		Level:     messageLevel(message),
	}:
	default:
		// Channel full, skip (the server log still has the line)
	}
}

// messageLevel classifies a log line by its leading word
func messageLevel(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	switch {
	case strings.HasPrefix(lower, "error"), strings.Contains(lower, " failed"):
		return "error"
	case strings.HasPrefix(lower, "warning"):
		return "warning"
	default:
		return "info"
	}
}

// Package audit appends every routed turn to a per-session markdown log.
// The log is an operator-facing artifact: it answers "what did the router
// decide and why" without a database query.
package audit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

type Entry struct {
	DataDir   string
	SessionID string
	Role      string
	Text      string
	Timestamp time.Time
}

var pathSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func Append(entry Entry) error {
	dataDir := strings.TrimSpace(entry.DataDir)
	if dataDir == "" {
		return nil
	}
	text := strings.TrimSpace(entry.Text)
	if text == "" {
		return nil
	}

	sessionID := sanitizeSegment(entry.SessionID)
	if sessionID == "" {
		sessionID = "unknown"
	}
	timestamp := entry.Timestamp.UTC()
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	baseDir := filepath.Join(dataDir, "support-router", "logs", "sessions")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}
	logPath := filepath.Join(baseDir, sessionID+".md")

	header := ""
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		header = fmt.Sprintf("# Session Log\n\n- session_id: `%s`\n\n", sessionID)
	}

	role := strings.TrimSpace(strings.ToLower(entry.Role))
	if role == "" {
		role = "user"
	}
	body := fmt.Sprintf("## %s `%s`\n\n%s\n\n", timestamp.Format(time.RFC3339), role, text)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	if header != "" {
		if _, err := file.WriteString(header); err != nil {
			return err
		}
	}
	if _, err := file.WriteString(body); err != nil {
		return err
	}
	return nil
}

// Sink adapts Append to the engine's fire-and-forget contract: failures are
// logged and swallowed, never surfaced to the request.
type Sink struct {
	dataDir string
	logger  *slog.Logger
}

func NewSink(dataDir string, logger *slog.Logger) *Sink {
	return &Sink{dataDir: dataDir, logger: logger}
}

func (s *Sink) Record(sessionID, role, content string) {
	err := Append(Entry{
		DataDir:   s.dataDir,
		SessionID: sessionID,
		Role:      role,
		Text:      content,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Warn("audit append failed", "session_id", sessionID, "error", err)
	}
}

func sanitizeSegment(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.ReplaceAll(trimmed, " ", "-")
	trimmed = pathSanitizer.ReplaceAllString(trimmed, "-")
	trimmed = strings.Trim(trimmed, "-.")
	return strings.ToLower(trimmed)
}

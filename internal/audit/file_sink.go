package audit

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	DefaultMaxBytes  = 2 * 1024 * 1024
	DefaultReadLimit = 100
)

// FileSink appends one line per event to a flat text log and rotates it
// into a single ".old" file once it grows past maxBytes.
type FileSink struct {
	path     string
	oldPath  string
	maxBytes int64
	now      func() time.Time

	mu sync.Mutex
}

func NewFileSink(path string, maxBytes int64) *FileSink {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	ext := filepath.Ext(path)
	return &FileSink{
		path:     path,
		oldPath:  strings.TrimSuffix(path, ext) + ".old" + ext,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (s *FileSink) WithClock(now func() time.Time) *FileSink {
	s.now = now
	return s
}

func (s *FileSink) Path() string { return s.path }

func (s *FileSink) OldPath() string { return s.oldPath }

func (s *FileSink) Record(ctx context.Context, e Event) error {
	line := s.format(ctx, e)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rotate(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write event log: %w", err)
	}
	return nil
}

// format renders "[ts] [actorID|actorName] [ACTION] [origin] details".
func (s *FileSink) format(ctx context.Context, e Event) string {
	actorID, actorName := "-", "-"
	if e.ActorID != nil {
		actorID = e.ActorID.String()
	}
	if e.ActorName != "" {
		actorName = e.ActorName
	}
	origin := OriginFrom(ctx)
	if origin == "" {
		origin = "-"
	}
	details := strings.ReplaceAll(e.Details, "\n", " ")

	return fmt.Sprintf("[%s] [%s|%s] [%s] [%s] %s\n",
		s.now().UTC().Format(time.RFC3339), actorID, actorName, e.Action, origin, details)
}

// rotate discards the previous old file and moves the current one aside.
func (s *FileSink) rotate() error {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat event log: %w", err)
	}
	if info.Size() <= s.maxBytes {
		return nil
	}

	if err := os.Remove(s.oldPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove old event log: %w", err)
	}
	if err := os.Rename(s.path, s.oldPath); err != nil {
		return fmt.Errorf("rotate event log: %w", err)
	}
	return nil
}

// Filter selects lines from the event log. Empty fields match everything.
type Filter struct {
	Search string `query:"search"`
	Action string `query:"action"`
	UserID string `query:"userId"`
	Limit  int    `query:"limit"`
}

// Read returns matching lines of the current file, newest first.
func (s *FileSink) Read(f Filter) ([]string, error) {
	raw, err := s.Raw()
	if err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	search := strings.ToLower(f.Search)
	actionTag := ""
	if f.Action != "" {
		actionTag = "[" + strings.ToUpper(f.Action) + "]"
	}
	userTag := ""
	if f.UserID != "" {
		userTag = "[" + f.UserID + "|"
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(line), search) {
			continue
		}
		if actionTag != "" && !strings.Contains(line, actionTag) {
			continue
		}
		if userTag != "" && !strings.Contains(line, userTag) {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}

	out := make([]string, 0, min(limit, len(lines)))
	for i := len(lines) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, lines[i])
	}
	return out, nil
}

// Raw returns the current file contents, or nothing if it does not exist yet.
func (s *FileSink) Raw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	return raw, nil
}

// Package session persists who is logged in to kpi on this machine and
// the "remember me" preference of the login prompt.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/config"
	"github.com/calvinalkan/kpi-tracker/internal/refdata"

	"github.com/natefinch/atomic"
)

// FileName is the session file inside the kpi config directory.
const FileName = "session.json"

// ErrNotLoggedIn is returned when a command needs a user and none is set.
var ErrNotLoggedIn = errors.New("not logged in (run 'kpi login')")

type state struct {
	Current    *refdata.User `json:"current,omitempty"`
	Since      time.Time     `json:"since,omitzero"`
	Remembered string        `json:"remembered,omitempty"`
}

// Session is the persisted login state. Every mutation is written through
// to disk.
type Session struct {
	path  string
	state state
}

// Path returns the session file location for env, or "" when no config
// directory can be determined.
func Path(env map[string]string) string {
	dir := config.Dir(env)
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, FileName)
}

// Load reads the session at path. A missing file is an empty session.
func Load(path string) (*Session, error) {
	s := &Session{path: path}

	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}

		return nil, fmt.Errorf("reading session: %w", err)
	}

	err = json.Unmarshal(data, &s.state)
	if err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}

	return s, nil
}

// Current returns the logged-in user.
func (s *Session) Current() (refdata.User, bool) {
	if s.state.Current == nil {
		return refdata.User{}, false
	}

	return *s.state.Current, true
}

// Require returns the logged-in user or ErrNotLoggedIn.
func (s *Session) Require() (refdata.User, error) {
	u, ok := s.Current()
	if !ok {
		return refdata.User{}, ErrNotLoggedIn
	}

	return u, nil
}

// Since returns when the current user logged in.
func (s *Session) Since() time.Time {
	return s.state.Since
}

// Remembered returns the id of the user to preselect at the next login,
// or "".
func (s *Session) Remembered() string {
	return s.state.Remembered
}

// Login makes u the current user. With remember set, u is preselected at
// the next login; without it any remembered user is cleared.
func (s *Session) Login(u refdata.User, remember bool, now time.Time) error {
	s.state.Current = &u
	s.state.Since = now

	if remember {
		s.state.Remembered = u.ID
	} else {
		s.state.Remembered = ""
	}

	return s.save()
}

// Logout clears the current user. The remembered user is kept.
func (s *Session) Logout() error {
	s.state.Current = nil
	s.state.Since = time.Time{}

	return s.save()
}

// Forget clears the remembered user.
func (s *Session) Forget() error {
	s.state.Remembered = ""

	return s.save()
}

func (s *Session) save() error {
	if s.path == "" {
		return errors.New("no session location (set HOME or XDG_CONFIG_HOME)")
	}

	err := os.MkdirAll(filepath.Dir(s.path), 0o750)
	if err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	err = atomic.WriteFile(s.path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}

	return nil
}

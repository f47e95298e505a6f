package session_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/calvinalkan/kpi-tracker/internal/refdata"
	"github.com/calvinalkan/kpi-tracker/internal/session"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ming = refdata.User{ID: "1", EmpID: "E001", Name: "張小明", LoginID: "ming", IsAdmin: true}

func TestLoadMissingIsEmpty(t *testing.T) {
	t.Parallel()

	s, err := session.Load(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	_, ok := s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.Remembered())

	_, err = s.Require()
	require.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestLoginPersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kpi", "session.json")
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	s, err := session.Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Login(ming, true, now))

	reloaded, err := session.Load(path)
	require.NoError(t, err)

	got, ok := reloaded.Current()
	require.True(t, ok)

	if diff := cmp.Diff(ming, got); diff != "" {
		t.Errorf("current user mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "1", reloaded.Remembered())
	assert.True(t, reloaded.Since().Equal(now))
}

func TestLogoutKeepsRememberedUser(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")

	s, err := session.Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Login(ming, true, time.Now()))
	require.NoError(t, s.Logout())

	reloaded, err := session.Load(path)
	require.NoError(t, err)

	_, ok := reloaded.Current()
	assert.False(t, ok)
	assert.Equal(t, "1", reloaded.Remembered())

	require.NoError(t, reloaded.Forget())
	assert.Empty(t, reloaded.Remembered())
}

func TestLoginWithoutRememberClearsPreference(t *testing.T) {
	t.Parallel()

	s, err := session.Load(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	require.NoError(t, s.Login(ming, true, time.Now()))
	require.NoError(t, s.Login(refdata.User{ID: "2", Name: "李大華"}, false, time.Now()))

	assert.Empty(t, s.Remembered())

	u, err := s.Require()
	require.NoError(t, err)
	assert.Equal(t, "李大華", u.Name)
}

func TestPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("/cfg", "kpi", "session.json"), session.Path(map[string]string{"XDG_CONFIG_HOME": "/cfg"}))
	assert.Empty(t, session.Path(map[string]string{}))
}

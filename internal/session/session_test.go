package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/larder/internal/domain"
	"github.com/pders01/larder/internal/storage"
)

var directory = []domain.User{
	{ID: 1, Username: "emilys", Password: "emilyspass", FirstName: "Emily"},
	{ID: 2, Username: "michaelw", Password: "michaelwpass", FirstName: "Michael"},
}

type stubUsers struct {
	users []domain.User
	err   error
	calls int
}

func (s *stubUsers) Users(context.Context) ([]domain.User, error) {
	s.calls++
	return s.users, s.err
}

func newGate(t *testing.T, src UserSource) (*Gate, *storage.Store) {
	t.Helper()
	st, err := storage.NewStore(filepath.Join(t.TempDir(), "session.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewGate(src, st), st
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"both empty", "", "", ErrMissingCredentials},
		{"both blank", "  ", "\t", ErrMissingCredentials},
		{"username missing", "", "pw", ErrMissingUsername},
		{"password missing", "emilys", "   ", ErrMissingPassword},
		{"ok", " emilys ", " emilyspass ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, p, err := Validate(tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "emilys", u)
			assert.Equal(t, "emilyspass", p)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	u, err := Authenticate("michaelw", "michaelwpass", directory)
	require.NoError(t, err)
	assert.Equal(t, 2, u.ID)

	_, err = Authenticate("nobody", "x", directory)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = Authenticate("emilys", "EMILYSPASS", directory)
	assert.ErrorIs(t, err, ErrWrongPassword, "comparison is exact")

	_, err = Authenticate("Emilys", "emilyspass", directory)
	assert.ErrorIs(t, err, ErrUserNotFound, "username match is exact")
}

func TestGate_LoginPersistsMarker(t *testing.T) {
	src := &stubUsers{users: directory}
	g, _ := newGate(t, src)
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	sess, err := g.Login(context.Background(), " emilys", "emilyspass ")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.UserID)
	assert.Equal(t, "Emily", sess.FirstName)
	assert.Equal(t, 1, src.calls)

	cur, err := g.Current()
	require.NoError(t, err)
	assert.Equal(t, "Emily", cur.FirstName)
	assert.True(t, fixed.Equal(cur.CreatedAt))
	assert.True(t, g.SignedIn())
	assert.Equal(t, "Hi, Emily!", Greeting(cur))
}

func TestGate_LoginValidationSkipsFetch(t *testing.T) {
	src := &stubUsers{users: directory}
	g, _ := newGate(t, src)

	_, err := g.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, src.calls)
	assert.False(t, g.SignedIn())
}

func TestGate_LoginRejected(t *testing.T) {
	g, _ := newGate(t, &stubUsers{users: directory})

	_, err := g.Login(context.Background(), "emilys", "nope")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = g.Current()
	assert.ErrorIs(t, err, storage.ErrNoSession, "a failed login leaves no marker")
}

func TestGate_LoginDirectoryUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	g, _ := newGate(t, &stubUsers{err: cause})

	_, err := g.Login(context.Background(), "emilys", "emilyspass")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Could not connect to the server. Try again later.", Message(err))
}

func TestGate_Logout(t *testing.T) {
	g, _ := newGate(t, &stubUsers{users: directory})
	_, err := g.Login(context.Background(), "emilys", "emilyspass")
	require.NoError(t, err)

	require.NoError(t, g.Logout())

	assert.False(t, g.SignedIn())
	_, err = g.Current()
	assert.ErrorIs(t, err, storage.ErrNoSession)
}

// memMarkers records everything the gate persists.
type memMarkers struct {
	saved []domain.Session
}

func (m *memMarkers) SaveSession(sess domain.Session) error {
	m.saved = append(m.saved, sess)
	return nil
}

func (m *memMarkers) GetSession() (domain.Session, error) {
	if len(m.saved) == 0 {
		return domain.Session{}, storage.ErrNoSession
	}
	return m.saved[len(m.saved)-1], nil
}

func (m *memMarkers) ClearSession() error {
	m.saved = nil
	return nil
}

func TestGate_PersistsOnlyIDAndName(t *testing.T) {
	markers := &memMarkers{}
	g := NewGate(&stubUsers{users: directory}, markers)

	_, err := g.Login(context.Background(), "emilys", "emilyspass")
	require.NoError(t, err)
	require.Len(t, markers.saved, 1)
	assert.Equal(t, 1, markers.saved[0].UserID)
	assert.Equal(t, "Emily", markers.saved[0].FirstName)

	require.NoError(t, g.Logout())
	assert.Empty(t, markers.saved, "nothing of the user survives logout")
}

func TestMessage(t *testing.T) {
	tests := map[error]string{
		nil:                   "Signed in! Opening your recipes...",
		ErrMissingCredentials: "Username and password are required.",
		ErrMissingUsername:    "Username is required.",
		ErrMissingPassword:    "Password must not be empty.",
		ErrUserNotFound:       "Username not found.",
		ErrWrongPassword:      "Wrong password.",
		storage.ErrNoSession:  "Not signed in.",
	}
	for err, want := range tests {
		assert.Equal(t, want, Message(err))
	}
}

// Package session checks credentials against the remote user directory and
// keeps the signed-in marker that gates the catalog view.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pders01/larder/internal/debuglog"
	"github.com/pders01/larder/internal/domain"
	"github.com/pders01/larder/internal/storage"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrMissingUsername    = errors.New("username is required")
	ErrMissingPassword    = errors.New("password must not be empty")
	ErrUserNotFound       = errors.New("username not found")
	ErrWrongPassword      = errors.New("wrong password")
	// ErrUnavailable wraps failures to reach the user directory.
	ErrUnavailable = errors.New("user directory unavailable")
)

// UserSource lists the accounts allowed to sign in.
type UserSource interface {
	Users(ctx context.Context) ([]domain.User, error)
}

// MarkerStore persists the session marker.
type MarkerStore interface {
	SaveSession(domain.Session) error
	GetSession() (domain.Session, error)
	ClearSession() error
}

// Validate trims both fields and reports which one is missing.
func Validate(username, password string) (string, string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	switch {
	case username == "" && password == "":
		return "", "", ErrMissingCredentials
	case username == "":
		return "", "", ErrMissingUsername
	case password == "":
		return "", "", ErrMissingPassword
	}
	return username, password, nil
}

// Authenticate finds username in users and compares the password exactly.
func Authenticate(username, password string, users []domain.User) (*domain.User, error) {
	for i := range users {
		if users[i].Username != username {
			continue
		}
		if users[i].Password != password {
			return nil, ErrWrongPassword
		}
		return &users[i], nil
	}
	return nil, ErrUserNotFound
}

// Gate signs users in and out.
type Gate struct {
	users UserSource
	store MarkerStore
	now   func() time.Time
}

func NewGate(users UserSource, store MarkerStore) *Gate {
	return &Gate{users: users, store: store, now: time.Now}
}

// Login validates the input, fetches the directory once and on success
// persists the marker.
func (g *Gate) Login(ctx context.Context, username, password string) (domain.Session, error) {
	username, password, err := Validate(username, password)
	if err != nil {
		return domain.Session{}, err
	}

	users, err := g.users.Users(ctx)
	if err != nil {
		debuglog.Errorf("fetching users: %v", err)
		return domain.Session{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	user, err := Authenticate(username, password, users)
	if err != nil {
		debuglog.WithFields(map[string]interface{}{"username": username}).Warnf("login rejected: %v", err)
		return domain.Session{}, err
	}

	sess := domain.Session{UserID: user.ID, FirstName: user.FirstName, CreatedAt: g.now()}
	if err := g.store.SaveSession(sess); err != nil {
		return domain.Session{}, fmt.Errorf("saving session: %w", err)
	}
	debuglog.WithFields(map[string]interface{}{"user_id": user.ID}).Infof("signed in")
	return sess, nil
}

// Current returns the persisted marker or storage.ErrNoSession.
func (g *Gate) Current() (domain.Session, error) {
	return g.store.GetSession()
}

// SignedIn reports whether a usable marker exists.
func (g *Gate) SignedIn() bool {
	_, err := g.Current()
	return err == nil
}

// Logout removes every durable marker.
func (g *Gate) Logout() error {
	if err := g.store.ClearSession(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	debuglog.Infof("signed out")
	return nil
}

// Greeting is the header line shown above the catalog.
func Greeting(sess domain.Session) string {
	return fmt.Sprintf("Hi, %s!", sess.FirstName)
}

// Message maps the outcome of Login to the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return "Signed in! Opening your recipes..."
	case errors.Is(err, ErrMissingCredentials):
		return "Username and password are required."
	case errors.Is(err, ErrMissingUsername):
		return "Username is required."
	case errors.Is(err, ErrMissingPassword):
		return "Password must not be empty."
	case errors.Is(err, ErrUserNotFound):
		return "Username not found."
	case errors.Is(err, ErrWrongPassword):
		return "Wrong password."
	case errors.Is(err, storage.ErrNoSession):
		return "Not signed in."
	default:
		return "Could not connect to the server. Try again later."
	}
}

// Package storage persists the signed-in session marker in a bbolt file.
package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/larder/internal/domain"
)

var (
	sessionBucket = []byte("session")

	keyUserID    = []byte("user_id")
	keyFirstName = []byte("first_name")
	keyCreatedAt = []byte("created_at")
)

// ErrNoSession is returned when no complete session marker is stored.
var ErrNoSession = errors.New("no active session")

type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) the database at dbPath. timeout bounds the wait
// for the file lock held by another larder process.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(sessionBucket)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession replaces the session marker.
func (s *Store) SaveSession(sess domain.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if err := b.Put(keyUserID, []byte(sess.UserIDString())); err != nil {
			return err
		}
		if err := b.Put(keyFirstName, []byte(sess.FirstName)); err != nil {
			return err
		}
		return b.Put(keyCreatedAt, []byte(sess.CreatedAt.UTC().Format(time.RFC3339)))
	})
}

// GetSession returns the stored marker. A missing or blank first name or user
// id counts as no session.
func (s *Store) GetSession() (domain.Session, error) {
	var sess domain.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		id := strings.TrimSpace(string(b.Get(keyUserID)))
		name := strings.TrimSpace(string(b.Get(keyFirstName)))
		if id == "" || name == "" {
			return ErrNoSession
		}
		uid, err := strconv.Atoi(id)
		if err != nil {
			return fmt.Errorf("%w: corrupt user id %q", ErrNoSession, id)
		}
		sess.UserID = uid
		sess.FirstName = name
		if ts := b.Get(keyCreatedAt); ts != nil {
			if t, err := time.Parse(time.RFC3339, string(ts)); err == nil {
				sess.CreatedAt = t
			}
		}
		return nil
	})
	return sess, err
}

// ClearSession removes every key in the session bucket, so nothing of the
// signed-in user outlives logout.
func (s *Store) ClearSession() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		var keys [][]byte
		if err := b.ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte(nil), k...))
			return nil
		}); err != nil {
			return err
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

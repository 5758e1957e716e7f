// Package session implements the session store: the token and user id of the signed-in user,
// persisted across runs through a [Storage] with two named slots.
//
// The store keeps an in-memory copy of the session. When the storage fails the copy is still updated and
// the error wraps [shared.ErrStorageUnavailable], so callers can treat the session as volatile for this run.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/shared"
)

// Slot names in durable storage.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// ErrSlotNotFound is returned by [Storage.Get] for an empty slot.
var ErrSlotNotFound = errors.New("slot not found")

// Storage is the durable key/value boundary behind the [Store].
type Storage interface {
	Get(key string) (string, error)        // Get returns the slot value or [ErrSlotNotFound]
	Set(key, value string) error           // Set writes a slot
	SetMany(slots map[string]string) error // SetMany writes the given slots together; on failure none change
	Delete(keys ...string) error           // Delete removes the given slots together
}

// Reader exposes the current session to components that only need to read it.
type Reader interface {
	Current() models.Session
}

// Store holds the current session.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	current models.Session
}

var _ Reader = (*Store)(nil)

// NewStore creates a [Store] restored from storage.
//
// A storage read failure yields an unauthenticated store together with an error wrapping [shared.ErrStorageUnavailable].
func NewStore(storage Storage) (*Store, error) {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{storage: storage}

	token, err := storage.Get(TokenKey)
	if err != nil && !errors.Is(err, ErrSlotNotFound) {
		return s, fmt.Errorf("%w: failed to read token: %v", shared.ErrStorageUnavailable, err)
	}
	user, err := storage.Get(UserKey)
	if err != nil && !errors.Is(err, ErrSlotNotFound) {
		return s, fmt.Errorf("%w: failed to read user: %v", shared.ErrStorageUnavailable, err)
	}

	if token != "" && user != "" {
		s.current = models.Session{Token: token, UserID: user}
	}
	return s, nil
}

// SetSession records the token and user id and persists both slots.
func (s *Store) SetSession(token, userID string) error {
	if token == "" || userID == "" {
		return fmt.Errorf("%w: token and user id are required", shared.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = models.Session{Token: token, UserID: userID}

	if err := s.storage.SetMany(map[string]string{TokenKey: token, UserKey: userID}); err != nil {
		return fmt.Errorf("%w: failed to persist session: %v", shared.ErrStorageUnavailable, err)
	}
	return nil
}

// Current returns the last set session, or the zero session when unauthenticated.
func (s *Store) Current() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Clear removes both values from memory and storage.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = models.Session{}
	if err := s.storage.Delete(TokenKey, UserKey); err != nil {
		return fmt.Errorf("%w: failed to clear session: %v", shared.ErrStorageUnavailable, err)
	}
	return nil
}

// Package store persists cards, purchases and installment payments with gorm.
// Cards and purchases are soft deleted; every read used by the payment engine
// only sees active rows.
package store

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ChangeFunc is called with the user id after a committed mutation of that
// user's payment set. It must not block.
type ChangeFunc func(userID uint)

type Store struct {
	db  *gorm.DB
	now func() time.Time

	mu        sync.RWMutex
	listeners []ChangeFunc
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock replaces the clock used for paid_at timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Subscribe(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(userID uint) {
	s.mu.RLock()
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(userID)
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xy-planning-network/trailhead"
	"golang.org/x/text/cases"
)

// A Store holds user records.
//
// Emails are matched case-insensitively.
type Store interface {
	// Create stores u, assigning its ID, ExternalID and CreatedAt.
	// If a user with the same email exists, ErrExists returns.
	Create(ctx context.Context, u trailhead.User) (trailhead.User, error)

	// FindByEmail retrieves the user with email.
	// If none exists, ErrNotExist returns.
	FindByEmail(ctx context.Context, email string) (trailhead.User, error)

	// FindByID retrieves the user with id.
	// If none exists, ErrNotExist returns.
	FindByID(ctx context.Context, id uint) (trailhead.User, error)
}

var _ Store = (*Stub)(nil)

// A Stub is an in-memory Store safe for concurrent use.
type Stub struct {
	mu      sync.RWMutex
	nextID  uint
	byID    map[uint]trailhead.User
	byEmail map[string]uint
}

// NewStub constructs an empty *Stub.
func NewStub() *Stub {
	return &Stub{
		nextID:  1,
		byID:    make(map[uint]trailhead.User),
		byEmail: make(map[string]uint),
	}
}

// Create implements Store.
func (s *Stub) Create(ctx context.Context, u trailhead.User) (trailhead.User, error) {
	if err := ctx.Err(); err != nil {
		return trailhead.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := foldEmail(u.Email)
	if _, ok := s.byEmail[key]; ok {
		return trailhead.User{}, ErrExists
	}

	u.ID = s.nextID
	u.ExternalID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	s.nextID++

	s.byID[u.ID] = u
	s.byEmail[key] = u.ID

	return u, nil
}

// FindByEmail implements Store.
func (s *Stub) FindByEmail(ctx context.Context, email string) (trailhead.User, error) {
	if err := ctx.Err(); err != nil {
		return trailhead.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[foldEmail(email)]
	if !ok {
		return trailhead.User{}, ErrNotExist
	}

	return s.byID[id], nil
}

// FindByID implements Store.
func (s *Stub) FindByID(ctx context.Context, id uint) (trailhead.User, error) {
	if err := ctx.Err(); err != nil {
		return trailhead.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return trailhead.User{}, ErrNotExist
	}

	return u, nil
}

// foldEmail normalizes email for case-insensitive matching.
func foldEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xy-planning-network/trailhead"
	"golang.org/x/crypto/bcrypt"
)

// A Service registers and authenticates users against a Store.
type Service struct {
	store Store
	cost  int
}

// NewService constructs a *Service over store.
// A cost outside bcrypt's bounds falls back to [golang.org/x/crypto/bcrypt.DefaultCost].
func NewService(store Store, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Service{store: store, cost: cost}
}

// Register stores a new user with access granted, hashing password.
// If the email is taken, ErrExists returns.
func (s *Service) Register(ctx context.Context, name, email, password string) (trailhead.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return trailhead.User{}, fmt.Errorf("%w: hashing password: %s", trailhead.ErrUnexpected, err)
	}

	u := trailhead.User{
		AccessState: trailhead.AccessGranted,
		Email:       strings.TrimSpace(email),
		Name:        strings.TrimSpace(name),
		Password:    hash,
	}

	return s.store.Create(ctx, u)
}

// Authenticate retrieves the user with email whose password matches.
//
// Unknown emails and mismatched passwords both return ErrBadCredentials
// so callers cannot tell the two apart.
// Users without access return ErrNoAccess.
func (s *Service) Authenticate(ctx context.Context, email, password string) (trailhead.User, error) {
	u, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotExist) {
		return trailhead.User{}, ErrBadCredentials
	}
	if err != nil {
		return trailhead.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(u.Password, []byte(password)); err != nil {
		return trailhead.User{}, ErrBadCredentials
	}

	if !u.HasAccess() {
		return trailhead.User{}, ErrNoAccess
	}

	return u, nil
}

// FindOrCreate retrieves the user with email,
// storing a new one without a password if none exists.
// Identity providers vouching for an email sign users in this way.
func (s *Service) FindOrCreate(ctx context.Context, name, email string) (trailhead.User, error) {
	email = strings.TrimSpace(email)
	u, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		if !u.HasAccess() {
			return trailhead.User{}, ErrNoAccess
		}
		return u, nil
	}

	if !errors.Is(err, ErrNotExist) {
		return trailhead.User{}, err
	}

	u, err = s.store.Create(ctx, trailhead.User{
		AccessState: trailhead.AccessGranted,
		Email:       email,
		Name:        strings.TrimSpace(name),
	})
	if errors.Is(err, ErrExists) {
		// NOTE: another request created it first
		return s.store.FindByEmail(ctx, email)
	}

	return u, err
}

// Find retrieves the user with id.
func (s *Service) Find(ctx context.Context, id uint) (trailhead.User, error) {
	return s.store.FindByID(ctx, id)
}

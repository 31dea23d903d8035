// Package memory is an in-process repository.Store. Transactions run one at
// a time against a private copy of the data that replaces the shared copy
// on commit, so a failed or cancelled transaction leaves nothing behind.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/domain"
	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository"
)

type state struct {
	users   map[string]domain.User
	dogs    map[string]domain.Dog
	reviews []domain.Review
}

func newState() *state {
	return &state{
		users: make(map[string]domain.User),
		dogs:  make(map[string]domain.Dog),
	}
}

func (s *state) clone() *state {
	return &state{
		users:   maps.Clone(s.users),
		dogs:    maps.Clone(s.dogs),
		reviews: append([]domain.Review(nil), s.reviews...),
	}
}

// backend gives repositories access to a state.
type backend interface {
	read(fn func(*state) error) error
	write(fn func(*state) error) error
}

// Store implements repository.Store in memory.
type Store struct {
	txMu sync.Mutex // held for the duration of every write and transaction

	mu    sync.RWMutex
	state *state

	repos
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{state: newState()}
	s.repos = newRepos(s)
	return s
}

// WithinTx runs fn against a private copy of the store. The copy replaces
// the shared state only if fn succeeds and ctx is still live. Repositories
// of the store itself must not be used inside fn.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, newRepos(&txBackend{state: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

func (s *Store) read(fn func(*state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// write applies fn as an implicit single-statement transaction.
func (s *Store) write(fn func(*state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

type txBackend struct {
	state *state
}

func (b *txBackend) read(fn func(*state) error) error  { return fn(b.state) }
func (b *txBackend) write(fn func(*state) error) error { return fn(b.state) }

type repos struct {
	users   *UserRepository
	dogs    *DogRepository
	reviews *ReviewRepository
}

func newRepos(b backend) repos {
	return repos{
		users:   &UserRepository{b: b},
		dogs:    &DogRepository{b: b},
		reviews: &ReviewRepository{b: b},
	}
}

func (r repos) Users() repository.UserRepository     { return r.users }
func (r repos) Dogs() repository.DogRepository       { return r.dogs }
func (r repos) Reviews() repository.ReviewRepository { return r.reviews }

var _ repository.Store = (*Store)(nil)

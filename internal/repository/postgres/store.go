package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/repository"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/database"
)

// Store implements repository.Store using PostgreSQL.
type Store struct {
	pool database.DBTX
	repos
}

// NewStore creates a PostgreSQL-backed store.
func NewStore(pool database.DBTX) *Store {
	return &Store{pool: pool, repos: newRepos(pool)}
}

// WithinTx runs fn in a READ COMMITTED transaction. Row locks taken through
// the tx repositories are held until fn returns. The transaction commits
// only when fn returns nil and is rolled back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, newRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

type repos struct {
	users   *UserRepository
	dogs    *DogRepository
	reviews *ReviewRepository
}

func newRepos(q database.Querier) repos {
	return repos{
		users:   NewUserRepository(q),
		dogs:    NewDogRepository(q),
		reviews: NewReviewRepository(q),
	}
}

func (r repos) Users() repository.UserRepository     { return r.users }
func (r repos) Dogs() repository.DogRepository       { return r.dogs }
func (r repos) Reviews() repository.ReviewRepository { return r.reviews }

func exec(ctx context.Context, q database.Querier, op, query string, args ...any) (pgconn.CommandTag, error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	tag, err := q.Exec(ctx, query, args...)
	end(err)
	return tag, err
}

var (
	_ repository.Store        = (*Store)(nil)
	_ repository.Repositories = repos{}
)

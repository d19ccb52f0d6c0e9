// Package memstore is an in-process implementation of the unit of work.
// Every transaction runs under one store-wide lock against a copy of the
// state, which is swapped in only on commit.
package memstore

import (
	"context"
	"maps"
	"sync"

	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/domain/user"
	"parking-lot-manager/internal/usecase/shared"
)

type Store struct {
	mu    sync.Mutex
	state *state
}

func New() *Store {
	return &Store{state: newState()}
}

// NewUoW exposes the store as a shared.UnitOfWork.
func NewUoW(s *Store) shared.UnitOfWork {
	return s
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(ctx, &memTx{st: working}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Writes made by fn are discarded.
	return fn(ctx, &memTx{st: s.state.clone()})
}

type sequences struct {
	users, lots, spots, reservations, jobs int64
}

type state struct {
	seq          sequences
	users        map[int64]user.User
	preferences  map[int64]user.Preferences
	lots         map[int64]lot.Lot
	spots        map[int64]lot.Spot
	reservations map[int64]reservation.Reservation
	jobs         map[int64]job.Job
}

func newState() *state {
	return &state{
		users:        map[int64]user.User{},
		preferences:  map[int64]user.Preferences{},
		lots:         map[int64]lot.Lot{},
		spots:        map[int64]lot.Spot{},
		reservations: map[int64]reservation.Reservation{},
		jobs:         map[int64]job.Job{},
	}
}

// Domain values are replaced, never mutated in place, so a shallow copy of
// each map is enough to isolate a transaction.
func (s *state) clone() *state {
	return &state{
		seq:          s.seq,
		users:        maps.Clone(s.users),
		preferences:  maps.Clone(s.preferences),
		lots:         maps.Clone(s.lots),
		spots:        maps.Clone(s.spots),
		reservations: maps.Clone(s.reservations),
		jobs:         maps.Clone(s.jobs),
	}
}

type memTx struct {
	st *state
}

func (t *memTx) Users() shared.UserRepository               { return &userRepo{st: t.st} }
func (t *memTx) Preferences() shared.PreferencesRepository  { return &preferencesRepo{st: t.st} }
func (t *memTx) Lots() shared.LotRepository                 { return &lotRepo{st: t.st} }
func (t *memTx) Spots() shared.SpotRepository               { return &spotRepo{st: t.st} }
func (t *memTx) Reservations() shared.ReservationRepository { return &reservationRepo{st: t.st} }
func (t *memTx) Jobs() shared.JobRepository                 { return &jobRepo{st: t.st} }

// constraintViolation mirrors a unique index violation of the SQL schema.
type constraintViolation struct {
	name string
}

func (c constraintViolation) Error() string {
	return "duplicate key value violates unique constraint " + c.name
}

func (c constraintViolation) Constraint() string {
	return c.name
}

package memstore

import (
	"context"
	"slices"
	"sort"
	"time"

	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/domain/reservation"
	"parking-lot-manager/internal/domain/user"
	"parking-lot-manager/internal/infra"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// -----------------------------------------------------------------------------
// users
// -----------------------------------------------------------------------------

type userRepo struct{ st *state }

func (r *userRepo) Create(_ context.Context, u *user.User) (int64, error) {
	for _, existing := range r.st.users {
		if existing.Name().Value() == u.Name().Value() {
			return 0, infra.WrapRepoErr("failed to create user", constraintViolation{infra.ConstraintUserName})
		}
	}
	r.st.seq.users++
	row := *u
	row.AssignID(r.st.seq.users)
	r.st.users[row.ID()] = row
	return row.ID(), nil
}

func (r *userRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	row, ok := r.st.users[id]
	if !ok {
		return nil, infra.NotFound("user not found")
	}
	return &row, nil
}

func (r *userRepo) FindByName(_ context.Context, name string) (*user.User, error) {
	for _, id := range sortedKeys(r.st.users) {
		if row := r.st.users[id]; row.Name().Value() == name {
			return &row, nil
		}
	}
	return nil, infra.NotFound("user not found")
}

func (r *userRepo) ExistsAdmin(_ context.Context) (bool, error) {
	for _, row := range r.st.users {
		if row.IsAdmin() {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) ListNonAdmin(_ context.Context) ([]*user.User, error) {
	var out []*user.User
	for _, id := range sortedKeys(r.st.users) {
		row := r.st.users[id]
		if !row.IsAdmin() {
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.users[id]; !ok {
		return infra.NotFound("user not found")
	}
	delete(r.st.users, id)
	return nil
}

// -----------------------------------------------------------------------------
// preferences
// -----------------------------------------------------------------------------

type preferencesRepo struct{ st *state }

func (r *preferencesRepo) Upsert(_ context.Context, p *user.Preferences) error {
	if _, ok := r.st.users[p.UserID()]; !ok {
		return infra.WrapRepoErr("failed to upsert preferences", nil, infra.KindForeignKeyViolated)
	}
	r.st.preferences[p.UserID()] = *p
	return nil
}

func (r *preferencesRepo) FindByUser(_ context.Context, userID int64) (*user.Preferences, error) {
	row, ok := r.st.preferences[userID]
	if !ok {
		return nil, infra.NotFound("preferences not found")
	}
	return &row, nil
}

func (r *preferencesRepo) ListReminderEnabled(_ context.Context) ([]*user.Preferences, error) {
	var out []*user.Preferences
	for _, id := range sortedKeys(r.st.preferences) {
		row := r.st.preferences[id]
		if row.ReminderEnabled() {
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *preferencesRepo) DeleteByUser(_ context.Context, userID int64) error {
	delete(r.st.preferences, userID)
	return nil
}

// -----------------------------------------------------------------------------
// lots
// -----------------------------------------------------------------------------

type lotRepo struct{ st *state }

func (r *lotRepo) Create(_ context.Context, l *lot.Lot) (int64, error) {
	r.st.seq.lots++
	row := *l
	row.AssignID(r.st.seq.lots)
	r.st.lots[row.ID()] = row
	return row.ID(), nil
}

func (r *lotRepo) FindByID(_ context.Context, id int64) (*lot.Lot, error) {
	row, ok := r.st.lots[id]
	if !ok {
		return nil, infra.NotFound("lot not found")
	}
	return &row, nil
}

func (r *lotRepo) Update(_ context.Context, l *lot.Lot) error {
	if _, ok := r.st.lots[l.ID()]; !ok {
		return infra.NotFound("lot not found")
	}
	r.st.lots[l.ID()] = *l
	return nil
}

func (r *lotRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.lots[id]; !ok {
		return infra.NotFound("lot not found")
	}
	for _, s := range r.st.spots {
		if s.LotID == id {
			return infra.WrapRepoErr("failed to delete lot", nil, infra.KindForeignKeyViolated)
		}
	}
	delete(r.st.lots, id)
	return nil
}

func (r *lotRepo) List(_ context.Context) ([]*lot.Lot, error) {
	out := make([]*lot.Lot, 0, len(r.st.lots))
	for _, id := range sortedKeys(r.st.lots) {
		row := r.st.lots[id]
		out = append(out, &row)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// spots
// -----------------------------------------------------------------------------

type spotRepo struct{ st *state }

func (r *spotRepo) CreateOrdinals(_ context.Context, lotID int64, ordinals []int, now time.Time) error {
	if _, ok := r.st.lots[lotID]; !ok {
		return infra.WrapRepoErr("failed to create spots", nil, infra.KindForeignKeyViolated)
	}
	taken := map[int]bool{}
	for _, s := range r.st.spots {
		if s.LotID == lotID {
			taken[s.Ordinal] = true
		}
	}
	for _, ord := range ordinals {
		if taken[ord] {
			return infra.WrapRepoErr("failed to create spots", constraintViolation{infra.ConstraintSpotOrdinal})
		}
		taken[ord] = true
		r.st.seq.spots++
		r.st.spots[r.st.seq.spots] = lot.Spot{
			ID:        r.st.seq.spots,
			LotID:     lotID,
			Ordinal:   ord,
			Status:    lot.SpotAvailable,
			UpdatedAt: now,
		}
	}
	return nil
}

func (r *spotRepo) FindByID(_ context.Context, id int64) (*lot.Spot, error) {
	s, ok := r.st.spots[id]
	if !ok {
		return nil, infra.NotFound("spot not found")
	}
	return &s, nil
}

func (r *spotRepo) List(_ context.Context, lotID int64) ([]lot.Spot, error) {
	out := make([]lot.Spot, 0)
	for _, s := range r.st.spots {
		if lotID == 0 || s.LotID == lotID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LotID != out[j].LotID {
			return out[i].LotID < out[j].LotID
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out, nil
}

func (r *spotRepo) ClaimFirstAvailable(ctx context.Context, lotID int64, now time.Time) (*lot.Spot, error) {
	spots, err := r.List(ctx, lotID)
	if err != nil {
		return nil, err
	}
	for _, s := range spots {
		if s.IsAvailable() {
			s.Status = lot.SpotOccupied
			s.UpdatedAt = now
			r.st.spots[s.ID] = s
			return &s, nil
		}
	}
	return nil, nil
}

func (r *spotRepo) SetStatus(_ context.Context, spotID int64, from, to lot.SpotStatus, now time.Time) (bool, error) {
	s, ok := r.st.spots[spotID]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	s.UpdatedAt = now
	r.st.spots[spotID] = s
	return true, nil
}

func (r *spotRepo) DeleteAvailableAbove(_ context.Context, lotID int64, capacity int) (int64, error) {
	var n int64
	for id, s := range r.st.spots {
		if s.LotID == lotID && s.Ordinal > capacity && s.IsAvailable() {
			delete(r.st.spots, id)
			n++
		}
	}
	return n, nil
}

func (r *spotRepo) Occupancy(_ context.Context) ([]lot.Occupancy, error) {
	byLot := map[int64]*lot.Occupancy{}
	for _, id := range sortedKeys(r.st.lots) {
		l := r.st.lots[id]
		byLot[id] = &lot.Occupancy{LotID: id, Capacity: l.Capacity()}
	}
	for _, s := range r.st.spots {
		o, ok := byLot[s.LotID]
		if !ok {
			continue
		}
		if s.IsAvailable() {
			o.Available++
		} else {
			o.Occupied++
		}
	}
	out := make([]lot.Occupancy, 0, len(byLot))
	for _, id := range sortedKeys(r.st.lots) {
		out = append(out, *byLot[id])
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// reservations
// -----------------------------------------------------------------------------

type reservationRepo struct{ st *state }

func (r *reservationRepo) Create(_ context.Context, res *reservation.Reservation) (int64, error) {
	if _, ok := r.st.users[res.UserID()]; !ok {
		return 0, infra.WrapRepoErr("failed to create reservation", nil, infra.KindForeignKeyViolated)
	}
	for _, existing := range r.st.reservations {
		if !existing.IsActive() || !res.IsActive() {
			continue
		}
		if existing.UserID() == res.UserID() {
			return 0, infra.WrapRepoErr("failed to create reservation", constraintViolation{infra.ConstraintActivePerUser})
		}
		if existing.SpotID() == res.SpotID() {
			return 0, infra.WrapRepoErr("failed to create reservation", constraintViolation{infra.ConstraintActivePerSpot})
		}
	}
	r.st.seq.reservations++
	row := *res
	row.AssignID(r.st.seq.reservations)
	r.st.reservations[row.ID()] = row
	return row.ID(), nil
}

func (r *reservationRepo) FindByID(_ context.Context, id int64) (*reservation.Reservation, error) {
	row, ok := r.st.reservations[id]
	if !ok {
		return nil, infra.NotFound("reservation not found")
	}
	return &row, nil
}

func (r *reservationRepo) findActive(match func(reservation.Reservation) bool) *reservation.Reservation {
	for _, id := range sortedKeys(r.st.reservations) {
		row := r.st.reservations[id]
		if row.IsActive() && match(row) {
			return &row
		}
	}
	return nil
}

func (r *reservationRepo) FindActiveByUser(_ context.Context, userID int64) (*reservation.Reservation, error) {
	return r.findActive(func(row reservation.Reservation) bool { return row.UserID() == userID }), nil
}

func (r *reservationRepo) FindActiveBySpot(_ context.Context, spotID int64) (*reservation.Reservation, error) {
	return r.findActive(func(row reservation.Reservation) bool { return row.SpotID() == spotID }), nil
}

func (r *reservationRepo) CountActiveBySpots(_ context.Context, spotIDs []int64) (int, error) {
	n := 0
	for _, row := range r.st.reservations {
		if row.IsActive() && slices.Contains(spotIDs, row.SpotID()) {
			n++
		}
	}
	return n, nil
}

func (r *reservationRepo) Update(_ context.Context, res *reservation.Reservation) error {
	stored, ok := r.st.reservations[res.ID()]
	if !ok || !stored.IsActive() {
		return infra.NotFound("active reservation not found")
	}
	r.st.reservations[res.ID()] = *res
	return nil
}

func (r *reservationRepo) ListStale(_ context.Context, cutoff time.Time) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, id := range sortedKeys(r.st.reservations) {
		row := r.st.reservations[id]
		if row.IsActive() && !row.IsParked() && !row.CreatedAt().After(cutoff) {
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *reservationRepo) ListByUser(_ context.Context, userID int64, limit int) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	keys := sortedKeys(r.st.reservations)
	for i := len(keys) - 1; i >= 0; i-- {
		row := r.st.reservations[keys[i]]
		if row.UserID() != userID {
			continue
		}
		out = append(out, &row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *reservationRepo) CountByUserSince(_ context.Context, userID int64, since time.Time) (int, error) {
	n := 0
	for _, row := range r.st.reservations {
		if row.UserID() == userID && !row.CreatedAt().Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *reservationRepo) LotActivity(_ context.Context, from, to time.Time) ([]shared.LotActivity, error) {
	byLot := map[int64]*shared.LotActivity{}
	get := func(id int64) *shared.LotActivity {
		a, ok := byLot[id]
		if !ok {
			a = &shared.LotActivity{LotID: id, Revenue: decimal.Zero}
			byLot[id] = a
		}
		return a
	}
	for _, row := range r.st.reservations {
		if inWindow(row.CreatedAt(), from, to) {
			get(row.LotID()).Reservations++
		}
		if row.Status() == reservation.StatusCompleted && inWindow(*row.ReleasedAt(), from, to) {
			a := get(row.LotID())
			a.Completed++
			a.Revenue = a.Revenue.Add(*row.Cost())
		}
	}
	out := make([]shared.LotActivity, 0, len(byLot))
	for _, id := range sortedKeys(byLot) {
		out = append(out, *byLot[id])
	}
	return out, nil
}

func (r *reservationRepo) UserActivity(_ context.Context, from, to time.Time) ([]shared.UserActivity, error) {
	byUser := map[int64]*shared.UserActivity{}
	get := func(id int64) *shared.UserActivity {
		a, ok := byUser[id]
		if !ok {
			a = &shared.UserActivity{UserID: id, Spent: decimal.Zero}
			byUser[id] = a
		}
		return a
	}
	for _, row := range r.st.reservations {
		if inWindow(row.CreatedAt(), from, to) {
			get(row.UserID()).Reservations++
		}
		if row.Status() == reservation.StatusCompleted && inWindow(*row.ReleasedAt(), from, to) {
			a := get(row.UserID())
			a.Completed++
			a.Spent = a.Spent.Add(*row.Cost())
			if row.ParkedAt() != nil {
				a.HoursParked += row.ReleasedAt().Sub(*row.ParkedAt()).Hours()
			}
		}
	}
	out := make([]shared.UserActivity, 0, len(byUser))
	for _, id := range sortedKeys(byUser) {
		out = append(out, *byUser[id])
	}
	return out, nil
}

func (r *reservationRepo) DeleteByUser(_ context.Context, userID int64) (int64, error) {
	var n int64
	for id, row := range r.st.reservations {
		if row.UserID() == userID {
			delete(r.st.reservations, id)
			n++
		}
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// jobs
// -----------------------------------------------------------------------------

type jobRepo struct{ st *state }

func (r *jobRepo) Create(_ context.Context, j *job.Job) (int64, error) {
	r.st.seq.jobs++
	row := *j
	row.AssignID(r.st.seq.jobs)
	r.st.jobs[row.ID()] = row
	return row.ID(), nil
}

func (r *jobRepo) FindByID(_ context.Context, id int64) (*job.Job, error) {
	row, ok := r.st.jobs[id]
	if !ok {
		return nil, infra.NotFound("job not found")
	}
	return &row, nil
}

func (r *jobRepo) Update(_ context.Context, j *job.Job) error {
	if _, ok := r.st.jobs[j.ID()]; !ok {
		return infra.NotFound("job not found")
	}
	r.st.jobs[j.ID()] = *j
	return nil
}

func (r *jobRepo) List(_ context.Context, limit int) ([]*job.Job, error) {
	var out []*job.Job
	keys := sortedKeys(r.st.jobs)
	for i := len(keys) - 1; i >= 0; i-- {
		row := r.st.jobs[keys[i]]
		out = append(out, &row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

package queries

import (
	"parking-lot-manager/internal/domain/job"
	"parking-lot-manager/internal/domain/lot"
	"parking-lot-manager/internal/domain/reservation"
)

func toLotView(l *lot.Lot, occ lot.Occupancy) LotView {
	return LotView{
		ID:        l.ID(),
		Name:      l.Name(),
		Price:     l.Price(),
		Address:   l.Address(),
		Pin:       l.Pin(),
		Capacity:  l.Capacity(),
		Occupied:  occ.Occupied,
		Available: occ.Available,
		CreatedAt: l.CreatedAt(),
		UpdatedAt: l.UpdatedAt(),
	}
}

func toSpotView(s lot.Spot) SpotView {
	return SpotView{
		ID:        s.ID,
		LotID:     s.LotID,
		Ordinal:   s.Ordinal,
		Status:    s.Status.String(),
		UpdatedAt: s.UpdatedAt,
	}
}

func toReservationView(r *reservation.Reservation) ReservationView {
	return ReservationView{
		ID:         r.ID(),
		LotID:      r.LotID(),
		SpotID:     r.SpotID(),
		UserID:     r.UserID(),
		Status:     r.Status().String(),
		CreatedAt:  r.CreatedAt(),
		ParkedAt:   r.ParkedAt(),
		ReleasedAt: r.ReleasedAt(),
		Cost:       r.Cost(),
	}
}

func toJobView(j *job.Job) JobView {
	return JobView{
		ID:           j.ID(),
		Kind:         j.Kind().String(),
		Status:       j.Status().String(),
		Params:       j.Params(),
		Result:       j.Result(),
		ErrorCode:    j.ErrorCode(),
		ErrorMessage: j.ErrorMessage(),
		Attempts:     j.Attempts(),
		CreatedAt:    j.CreatedAt(),
		UpdatedAt:    j.UpdatedAt(),
	}
}

func occupancyByLot(rows []lot.Occupancy) map[int64]lot.Occupancy {
	out := make(map[int64]lot.Occupancy, len(rows))
	for _, o := range rows {
		out[o.LotID] = o
	}
	return out
}

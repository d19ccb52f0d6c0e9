package response

import (
	"time"

	"parking-lot-manager/internal/usecase/commands"
	"parking-lot-manager/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type ReservationResponse struct {
	ID         int64      `json:"id"`
	LotID      int64      `json:"lot_id"`
	SpotID     int64      `json:"spot_id"`
	UserID     int64      `json:"user_id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ParkedAt   *time.Time `json:"parked_at,omitempty"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	Cost       *string    `json:"cost,omitempty"`
}

func FromReservationView(v *queries.ReservationView) ReservationResponse {
	var res ReservationResponse
	_ = copier.CopyWithOption(&res, v, moneyOption)
	return res
}

func FromReservationViews(vs []queries.ReservationView) []ReservationResponse {
	res := make([]ReservationResponse, 0, len(vs))
	if len(vs) == 0 {
		return res
	}
	_ = copier.CopyWithOption(&res, &vs, moneyOption)
	return res
}

type ReleaseResponse struct {
	Cost          string    `json:"cost"`
	DurationHours float64   `json:"duration_hours"`
	ReleasedAt    time.Time `json:"released_at"`
}

func FromReleaseResult(r *commands.ReleaseResult) ReleaseResponse {
	var res ReleaseResponse
	_ = copier.CopyWithOption(&res, r, moneyOption)
	return res
}

type FreeSpotResponse struct {
	SpotID        int64  `json:"spot_id"`
	ReservationID int64  `json:"reservation_id,omitempty"`
	Cost          string `json:"cost"`
}

func FromFreeSpotResult(r *commands.FreeSpotResult) FreeSpotResponse {
	var res FreeSpotResponse
	_ = copier.CopyWithOption(&res, r, moneyOption)
	return res
}

package response

import (
	"time"

	"parking-lot-manager/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type LotResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Address   string    `json:"address"`
	Pin       string    `json:"pin"`
	Capacity  int       `json:"capacity"`
	Occupied  int       `json:"occupied"`
	Available int       `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SpotResponse struct {
	ID        int64     `json:"id"`
	LotID     int64     `json:"lot_id"`
	Ordinal   int       `json:"ordinal"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromLotView(v *queries.LotView) LotResponse {
	var res LotResponse
	_ = copier.CopyWithOption(&res, v, moneyOption)
	return res
}

func FromLotViews(vs []queries.LotView) []LotResponse {
	res := make([]LotResponse, 0, len(vs))
	if len(vs) == 0 {
		return res
	}
	_ = copier.CopyWithOption(&res, &vs, moneyOption)
	return res
}

func FromSpotViews(vs []queries.SpotView) []SpotResponse {
	res := make([]SpotResponse, 0, len(vs))
	if len(vs) == 0 {
		return res
	}
	_ = copier.CopyWithOption(&res, &vs, moneyOption)
	return res
}

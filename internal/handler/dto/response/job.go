package response

import (
	"encoding/json"
	"time"

	"parking-lot-manager/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type JobResponse struct {
	ID           int64           `json:"id"`
	Kind         string          `json:"kind"`
	Status       string          `json:"status"`
	Params       json.RawMessage `json:"params,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Attempts     int             `json:"attempts"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func FromJobView(v *queries.JobView) JobResponse {
	var res JobResponse
	_ = copier.Copy(&res, v)
	return res
}

func FromJobViews(vs []queries.JobView) []JobResponse {
	res := make([]JobResponse, 0, len(vs))
	if len(vs) == 0 {
		return res
	}
	_ = copier.Copy(&res, &vs)
	return res
}

type LotSummaryResponse struct {
	LotID     int64   `json:"lot_id"`
	Name      string  `json:"name"`
	Capacity  int     `json:"capacity"`
	Occupied  int     `json:"occupied"`
	Available int     `json:"available"`
	Completed int     `json:"completed"`
	Revenue   string  `json:"revenue"`
	Occupancy float64 `json:"occupancy"`
}

type AnalyticsSummaryResponse struct {
	GeneratedAt    time.Time            `json:"generated_at"`
	TotalCapacity  int                  `json:"total_capacity"`
	TotalOccupied  int                  `json:"total_occupied"`
	TotalRevenue   string               `json:"total_revenue"`
	TotalCompleted int                  `json:"total_completed"`
	Lots           []LotSummaryResponse `json:"lots"`
}

// FromAnalyticsSummary renders money with two decimals and adds the
// per-lot occupancy ratio.
func FromAnalyticsSummary(v *queries.AnalyticsSummary) AnalyticsSummaryResponse {
	res := AnalyticsSummaryResponse{
		GeneratedAt:    v.GeneratedAt,
		TotalCapacity:  v.TotalCapacity,
		TotalOccupied:  v.TotalOccupied,
		TotalRevenue:   v.TotalRevenue.StringFixed(2),
		TotalCompleted: v.TotalCompleted,
		Lots:           make([]LotSummaryResponse, 0, len(v.Lots)),
	}
	for _, l := range v.Lots {
		item := LotSummaryResponse{
			LotID:     l.LotID,
			Name:      l.Name,
			Capacity:  l.Capacity,
			Occupied:  l.Occupied,
			Available: l.Available,
			Completed: l.Completed,
			Revenue:   l.Revenue.StringFixed(2),
		}
		if l.Capacity > 0 {
			item.Occupancy = float64(l.Occupied) / float64(l.Capacity)
		}
		res.Lots = append(res.Lots, item)
	}
	return res
}

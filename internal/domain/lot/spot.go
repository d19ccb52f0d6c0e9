package lot

import "time"

type SpotStatus string

const (
	SpotAvailable SpotStatus = "available"
	SpotOccupied  SpotStatus = "occupied"
)

func (s SpotStatus) String() string {
	return string(s)
}

func (s SpotStatus) IsValid() bool {
	switch s {
	case SpotAvailable, SpotOccupied:
		return true
	default:
		return false
	}
}

// Spot is identified by (LotID, Ordinal); Ordinal runs 1..capacity of the lot.
type Spot struct {
	ID        int64
	LotID     int64
	Ordinal   int
	Status    SpotStatus
	UpdatedAt time.Time
}

func (s Spot) IsAvailable() bool {
	return s.Status == SpotAvailable
}

// Ordinals returns from+1..to, the spots a capacity increase appends.
func Ordinals(from, to int) []int {
	if to <= from {
		return nil
	}
	out := make([]int, 0, to-from)
	for i := from + 1; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// Occupancy is the per-lot spot count summary.
type Occupancy struct {
	LotID     int64
	Capacity  int
	Occupied  int
	Available int
}

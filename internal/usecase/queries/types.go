package queries

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Read models (DTO for read side). They are JSON-encoded into the cache index.

type LotView struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Address   string          `json:"address"`
	Pin       string          `json:"pin"`
	Capacity  int             `json:"capacity"`
	Occupied  int             `json:"occupied"`
	Available int             `json:"available"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type SpotView struct {
	ID        int64     `json:"id"`
	LotID     int64     `json:"lot_id"`
	Ordinal   int       `json:"ordinal"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReservationView struct {
	ID         int64            `json:"id"`
	LotID      int64            `json:"lot_id"`
	SpotID     int64            `json:"spot_id"`
	UserID     int64            `json:"user_id"`
	Status     string           `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	ParkedAt   *time.Time       `json:"parked_at,omitempty"`
	ReleasedAt *time.Time       `json:"released_at,omitempty"`
	Cost       *decimal.Decimal `json:"cost,omitempty"`
}

type UserView struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	IsAdmin         bool      `json:"is_admin"`
	ReminderEnabled bool      `json:"reminder_enabled"`
	ReminderTime    string    `json:"reminder_time,omitempty"`
	Channel         string    `json:"channel,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type LotSummary struct {
	LotID     int64           `json:"lot_id"`
	Name      string          `json:"name"`
	Capacity  int             `json:"capacity"`
	Occupied  int             `json:"occupied"`
	Available int             `json:"available"`
	Completed int             `json:"completed"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type AnalyticsSummary struct {
	GeneratedAt    time.Time       `json:"generated_at"`
	TotalCapacity  int             `json:"total_capacity"`
	TotalOccupied  int             `json:"total_occupied"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalCompleted int             `json:"total_completed"`
	Lots           []LotSummary    `json:"lots"`
}

type JobView struct {
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

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

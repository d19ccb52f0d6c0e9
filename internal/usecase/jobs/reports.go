package jobs

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpireResult struct {
	Expired []int64 `json:"expired"`
}

type LotDailyStats struct {
	LotID        int64           `json:"lot_id"`
	Name         string          `json:"name"`
	Reservations int             `json:"reservations"`
	Completed    int             `json:"completed"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type DailyReport struct {
	Date              string          `json:"date"`
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	Lots              []LotDailyStats `json:"lots"`
	TotalReservations int             `json:"total_reservations"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
}

const (
	ActionIncreaseCapacity = "increase_capacity"
	ActionPromote          = "promote"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

type Recommendation struct {
	LotID        int64   `json:"lot_id"`
	Name         string  `json:"name"`
	Capacity     int     `json:"capacity"`
	Reservations int     `json:"reservations"`
	Utilization  float64 `json:"utilization"`
	Action       string  `json:"action"`
	Priority     string  `json:"priority"`
}

type OptimizeReport struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	WindowDays      int              `json:"window_days"`
	Recommendations []Recommendation `json:"recommendations"`
}

type ReminderResult struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Notified []int64   `json:"notified"`
}

type UserMonthlySummary struct {
	UserID       int64           `json:"user_id"`
	Reservations int             `json:"reservations"`
	Completed    int             `json:"completed"`
	Spent        decimal.Decimal `json:"spent"`
	HoursParked  float64         `json:"hours_parked"`
}

type MonthlyReport struct {
	Month string               `json:"month"`
	Users []UserMonthlySummary `json:"users"`
}

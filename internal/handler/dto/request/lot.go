package request

import (
	"parking-lot-manager/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

type CreateLotRequest struct {
	Name     string           `json:"name" binding:"required,max=128"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Address  string           `json:"address" binding:"max=256"`
	Pin      string           `json:"pin" binding:"max=16"`
	Capacity int              `json:"capacity" binding:"required,min=1"`
}

func (r *CreateLotRequest) ToCommand() commands.CreateLotRequest {
	return commands.CreateLotRequest{
		Name:     r.Name,
		Price:    *r.Price,
		Address:  r.Address,
		Pin:      r.Pin,
		Capacity: r.Capacity,
	}
}

// UpdateLotRequest is a partial update; absent fields keep their value.
type UpdateLotRequest struct {
	Name     *string          `json:"name" binding:"omitempty,max=128"`
	Price    *decimal.Decimal `json:"price"`
	Address  *string          `json:"address" binding:"omitempty,max=256"`
	Pin      *string          `json:"pin" binding:"omitempty,max=16"`
	Capacity *int             `json:"capacity" binding:"omitempty,min=1"`
}

func (r *UpdateLotRequest) ToCommand() commands.UpdateLotRequest {
	return commands.UpdateLotRequest{
		Name:     r.Name,
		Price:    r.Price,
		Address:  r.Address,
		Pin:      r.Pin,
		Capacity: r.Capacity,
	}
}

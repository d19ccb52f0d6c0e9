package request

type CreateReservationRequest struct {
	LotID int64 `json:"lot_id" binding:"required,min=1"`
}

package response

type CreatedResponse struct {
	ID int64 `json:"id"`
}

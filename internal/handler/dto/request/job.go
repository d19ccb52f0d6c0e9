package request

import "encoding/json"

type TriggerJobRequest struct {
	Kind   string          `json:"kind" binding:"required"`
	Params json.RawMessage `json:"params"`
}

package dto

import "encoding/json"

// UpdateSettingRequest stores a setting override. The value is validated
// against the key's typed schema by the service.
type UpdateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

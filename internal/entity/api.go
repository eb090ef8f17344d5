package entity

// GenerateResponse is the JSON envelope of every /generate reply.
// Failures carry only Success=false.
type GenerateResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image,omitempty"`
}

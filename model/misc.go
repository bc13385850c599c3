package model

// Response is the JSON envelope every endpoint replies with
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	User    interface{} `json:"user,omitempty"`
	Error   string      `json:"error,omitempty"`
}

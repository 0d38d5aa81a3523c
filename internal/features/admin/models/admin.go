package models

// Status is the contract-wide admin state
type Status struct {
	Initialized bool   `json:"initialized"`
	Admin       string `json:"admin,omitempty"`
	Paused      bool   `json:"paused"`
}

// InitializeRequest is the body of POST /admin/initialize
type InitializeRequest struct {
	Admin string `json:"admin" binding:"required"`
}

// PauseRequest is the body of POST /admin/pause
type PauseRequest struct {
	Paused *bool `json:"paused" binding:"required" example:"true"`
}

// WithdrawRequest is the body of POST /admin/withdraw
type WithdrawRequest struct {
	Token  string `json:"token" binding:"required" example:"TON"`
	Amount string `json:"amount" binding:"required" example:"100"`
	To     string `json:"to" binding:"required"`
}

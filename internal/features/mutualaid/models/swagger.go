package models

// CreateHelpRequestRequest is the body of POST /requests
type CreateHelpRequestRequest struct {
	Token       string `json:"token" binding:"required" example:"TON"`
	Goal        string `json:"goal" binding:"required" example:"1000"`
	Title       string `json:"title" binding:"required" example:"Medical bills"`
	Description string `json:"description" example:"Surgery next month"`
}

// DonateRequest is the body of POST /requests/{id}/donate
type DonateRequest struct {
	Amount string `json:"amount" binding:"required" example:"300"`
}

// CreatedResponse carries a newly allocated id
type CreatedResponse struct {
	ID uint64 `json:"id" example:"1"`
}

// AmountResponse reports the amount a call moved
type AmountResponse struct {
	RequestID uint64 `json:"request_id" example:"1"`
	Amount    string `json:"amount" example:"300"`
}

// DonationResponse is the cumulative donation of one donor
type DonationResponse struct {
	RequestID uint64 `json:"request_id" example:"1"`
	Donor     string `json:"donor"`
	Amount    string `json:"amount" example:"300"`
}

package models

// CreateGiveawayRequest is the body of POST /giveaways
// @Description Giveaway creation parameters; the prize is deposited from the caller
type CreateGiveawayRequest struct {
	Token           string `json:"token" binding:"required" example:"TON"`
	Amount          string `json:"amount" binding:"required" example:"500"`
	Title           string `json:"title" binding:"required" example:"Weekend drop"`
	Description     string `json:"description" example:"One lucky entrant gets the pot"`
	Category        string `json:"category" example:"community"`
	SelectionMethod string `json:"selection_method" example:"random" enums:"random,first_come,manual"`
	WinnerCount     uint32 `json:"winner_count" example:"1"`
	Duration        uint64 `json:"duration" binding:"required" example:"86400"` // seconds
}

// EnterGiveawayRequest is the body of POST /giveaways/{id}/enter
type EnterGiveawayRequest struct {
	Content string `json:"content" example:"my entry"`
}

// ChooseWinnerRequest is the body of POST /giveaways/{id}/choose-winner
type ChooseWinnerRequest struct {
	Index *uint32 `json:"index" binding:"required" example:"0"`
}

// CreatedResponse carries a newly allocated id
type CreatedResponse struct {
	ID uint64 `json:"id" example:"1"`
}

// WinnerResponse carries the drawn winner
type WinnerResponse struct {
	GiveawayID uint64 `json:"giveaway_id" example:"1"`
	Winner     string `json:"winner"`
}

// ParticipantResponse is a dense index lookup
type ParticipantResponse struct {
	GiveawayID  uint64 `json:"giveaway_id"`
	Index       uint32 `json:"index"`
	Participant string `json:"participant"`
}

// HasEnteredResponse reports whether an address entered a giveaway
type HasEnteredResponse struct {
	Entered bool   `json:"entered"`
	EntryID uint64 `json:"entry_id,omitempty"`
}

package models

// Item is one contract event as it appears in an account's feed.
type Item struct {
	Topic      string            `json:"topic"`
	LedgerTime uint64            `json:"ledger_time"`
	Fields     map[string]string `json:"fields"`
}

type FeedPage struct {
	Account string `json:"account"`
	Items   []Item `json:"items"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Total   int64  `json:"total"`
}

type LeaderboardEntry struct {
	Rank    int64   `json:"rank"`
	Account string  `json:"account"`
	Score   float64 `json:"score"`
}

type LeaderboardPage struct {
	Entries []LeaderboardEntry `json:"entries"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
	Total   int64              `json:"total"`
}

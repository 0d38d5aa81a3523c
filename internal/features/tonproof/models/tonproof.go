package models

import "time"

// PayloadResponse is the challenge a wallet signs in its ton_proof
// @Description Single-use ton_proof payload
type PayloadResponse struct {
	Payload   string    `json:"payload" example:"q1Hk2z8Xb0m6y1Zc6kq3H2v5wJtq1oXy4dE0f9sL1aA"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TONProofDomain is the app domain the wallet embedded into the proof
type TONProofDomain struct {
	LengthBytes uint32 `json:"lengthBytes" example:"14"`
	Value       string `json:"value" example:"localhost:3000"`
}

// TONProof is the ton_proof item returned by TON Connect
type TONProof struct {
	Timestamp int64          `json:"timestamp" binding:"required" example:"1700000000"`
	Domain    TONProofDomain `json:"domain"`
	Payload   string         `json:"payload" binding:"required"`
	Signature string         `json:"signature" binding:"required" example:"base64_encoded_signature"`
	StateInit string         `json:"state_init,omitempty"`
}

// TONProofRequest represents a request for TON Proof verification
// @Description Request for TON Proof verification
type TONProofRequest struct {
	Address string   `json:"address" binding:"required" example:"EQD4FPq-PRD4YtG87wgL7AErgQwHUMFQ-JxyYw8jzBPhqjfH"` // TON адрес кошелька
	Network string   `json:"network" binding:"required" example:"-239"`                                             // Сеть (-239 mainnet, -3 testnet)
	Proof   TONProof `json:"proof"`
}

// SessionResponse carries the wallet session token
// @Description Wallet session issued after a successful proof
type SessionResponse struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}

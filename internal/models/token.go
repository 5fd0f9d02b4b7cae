package models

import "time"

// RefreshToken is a persisted, longer-lived credential used to obtain a new
// access token without re-sending the password. Its lifecycle is independent
// from the stateless access token.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

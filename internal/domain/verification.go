package domain

import (
	"crypto/rand"
	"time"
)

// Verification status constants.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
)

// TokenLength is the length of a verification token in characters.
const TokenLength = 32

// Verification is the client re-verification sub-record attached to a
// submission when staff generate a verification link.
type Verification struct {
	Token      string     `json:"token"`
	CreatedAt  time.Time  `json:"createdAt"`
	Status     string     `json:"status"`
	Submitter  string     `json:"submitter,omitempty"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

// tokenAlphabet matches URL-safe base64 minus padding; tokens travel as
// plain URL path segments.
const tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// NewToken returns a fresh opaque verification token. Tokens are
// capability tokens, not secrets, but drawing from crypto/rand makes
// collisions and guessing equally implausible.
func NewToken() string {
	buf := make([]byte, TokenLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic("verification: read random bytes: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf)
}

// NewVerification creates a pending verification record with a fresh token.
func NewVerification(now time.Time) *Verification {
	return &Verification{
		Token:     NewToken(),
		CreatedAt: now,
		Status:    VerificationPending,
	}
}

// IsExpired reports whether the record is older than ttl at instant now.
func (v *Verification) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(v.CreatedAt) > ttl
}

// Matches reports whether the presented token exactly equals the stored
// one. A single-character difference fails.
func (v *Verification) Matches(token string) bool {
	return token != "" && v.Token == token
}

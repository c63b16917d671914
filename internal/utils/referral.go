package utils

import (
	"crypto/rand"
	"fmt"
)

// Referral codes use an unambiguous uppercase alphabet, no 0/O or 1/I,
// since members read them aloud and type them by hand.
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewReferralCode returns a random 8-character code such as "K7PQWM2X".
// Uniqueness is enforced by the database; callers retry on collision.
func NewReferralCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate referral code: %w", err)
	}
	for i, b := range buf {
		buf[i] = referralAlphabet[int(b)%len(referralAlphabet)]
	}
	return string(buf), nil
}

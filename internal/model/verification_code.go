package model

import "time"

// VerificationCode is the single live password reset code for an email.
type VerificationCode struct {
	Email     string `json:"email" db:"email"`
	Code      string `json:"code" db:"code"`
	Ctime     int64  `json:"ctime" db:"ctime"`
	ExpiresAt int64  `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the code is past its deadline at now.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.Unix() > v.ExpiresAt
}

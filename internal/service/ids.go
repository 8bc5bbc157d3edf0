package service

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/segmentio/ksuid"
)

func newID() string {
	return ksuid.New().String()
}

// newSecret returns a random password nobody knows. Accounts created through
// a provider get one so the password path stays closed for them.
func newSecret() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func newSuffix() string {
	bytes := make([]byte, 2)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

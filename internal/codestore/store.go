// Package codestore keeps the live password reset code for each email.
//
// A Store holds at most one code per email. Readers must treat an entry whose
// ExpiresAt has passed as expired and clear it with DeleteIf. Backends may also
// drop entries on their own: the memory store purges entries older than its
// retention in the background and evicts the least recently used code once it
// holds size entries, even if that code is still live. The db store only
// loses rows through DeleteIf or the cleanup job.
package codestore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/xxxsen/portfolio/internal/model"
	"github.com/xxxsen/portfolio/internal/repo"
)

const codeBytes = 3

type Store interface {
	// Put replaces any code already stored for item.Email.
	Put(ctx context.Context, item *model.VerificationCode) error
	// Get returns errors.ErrNotFound when nothing is stored for email.
	Get(ctx context.Context, email string) (*model.VerificationCode, error)
	// DeleteIf removes the entry for email only if it still holds code. It is
	// the only way codes leave a store, so a newer code is never dropped by a
	// reader holding a stale one.
	DeleteIf(ctx context.Context, email, code string) (bool, error)
}

// New builds the store named by kind: "memory" or "db".
func New(kind string, size int, retention time.Duration, codes *repo.VerificationCodeRepo) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(size, retention), nil
	case "db":
		if codes == nil {
			return nil, fmt.Errorf("db code store requires a repository")
		}
		return codes, nil
	default:
		return nil, fmt.Errorf("unsupported code store: %s", kind)
	}
}

// NewCode returns six lowercase hex characters from crypto/rand.
func NewCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

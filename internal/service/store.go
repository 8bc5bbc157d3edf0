package service

import (
	"context"

	"github.com/xxxsen/portfolio/internal/model"
)

// CredentialStore persists accounts. Create and UpdatePassword take plain
// passwords and hash them; Save never touches the digest.
type CredentialStore interface {
	Create(ctx context.Context, user *model.User, plainPassword string) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID, plainPassword string, mtime int64) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

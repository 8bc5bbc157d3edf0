package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/portfolio/internal/model"
	"github.com/xxxsen/portfolio/internal/pkg/dbutil"
	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
	"github.com/xxxsen/portfolio/internal/pkg/password"
)

var userColumns = []string{"id", "username", "email", "password_hash", "google_id", "ctime", "mtime"}

// UserRepo is the credential store. Plain passwords enter only through Create
// and UpdatePassword, which hash them exactly once before writing.
type UserRepo struct {
	db     *sqlx.DB
	hasher *password.Hasher
}

func NewUserRepo(db *sqlx.DB, hasher *password.Hasher) *UserRepo {
	return &UserRepo{db: db, hasher: hasher}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User, plainPassword string) error {
	hash, err := r.hasher.Hash(plainPassword)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": hash,
		"google_id":     user.GoogleID,
		"ctime":         user.Ctime,
		"mtime":         user.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.db, sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	user.PasswordHash = hash
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	where := map[string]interface{}{
		"_or": []map[string]interface{}{
			{"username": username},
			{"email": email},
		},
	}
	return r.getOne(ctx, where)
}

// Save writes the identity fields of user. The password digest is left alone.
func (r *UserRepo) Save(ctx context.Context, user *model.User) error {
	where := map[string]interface{}{"id": user.ID}
	update := map[string]interface{}{
		"username":  user.Username,
		"email":     user.Email,
		"google_id": user.GoogleID,
		"mtime":     user.Mtime,
	}
	return r.update(ctx, where, update)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, plainPassword string, mtime int64) error {
	hash, err := r.hasher.Hash(plainPassword)
	if err != nil {
		return err
	}
	where := map[string]interface{}{"id": userID}
	update := map[string]interface{}{
		"password_hash": hash,
		"mtime":         mtime,
	}
	return r.update(ctx, where, update)
}

func (r *UserRepo) update(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.db, sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	where["_limit"] = []uint{0, 1}
	sqlStr, args, err := builder.BuildSelect("users", where, userColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(r.db, sqlStr, args)
	var user model.User
	if err := r.db.GetContext(ctx, &user, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

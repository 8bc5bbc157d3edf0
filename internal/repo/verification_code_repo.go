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
)

// email is the primary key, so the upsert keeps one live code per address.
const upsertVerificationCodeSQL = `INSERT INTO verification_codes (email, code, ctime, expires_at) VALUES (?, ?, ?, ?)
ON CONFLICT (email) DO UPDATE SET code = excluded.code, ctime = excluded.ctime, expires_at = excluded.expires_at`

type VerificationCodeRepo struct {
	db *sqlx.DB
}

func NewVerificationCodeRepo(db *sqlx.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

func (r *VerificationCodeRepo) Put(ctx context.Context, item *model.VerificationCode) error {
	sqlStr, args := dbutil.Finalize(r.db, upsertVerificationCodeSQL, []interface{}{item.Email, item.Code, item.Ctime, item.ExpiresAt})
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *VerificationCodeRepo) Get(ctx context.Context, email string) (*model.VerificationCode, error) {
	where := map[string]interface{}{"email": email}
	sqlStr, args, err := builder.BuildSelect("verification_codes", where, []string{"email", "code", "ctime", "expires_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(r.db, sqlStr, args)
	var item model.VerificationCode
	if err := r.db.GetContext(ctx, &item, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// DeleteIf removes the entry only while it still holds code, so a newer code
// written concurrently for the same email survives.
func (r *VerificationCodeRepo) DeleteIf(ctx context.Context, email, code string) (bool, error) {
	affected, err := r.delete(ctx, map[string]interface{}{"email": email, "code": code})
	return affected > 0, err
}

func (r *VerificationCodeRepo) DeleteExpiredBefore(ctx context.Context, cutoff int64) (int64, error) {
	return r.delete(ctx, map[string]interface{}{"expires_at <": cutoff})
}

func (r *VerificationCodeRepo) delete(ctx context.Context, where map[string]interface{}) (int64, error) {
	sqlStr, args, err := builder.BuildDelete("verification_codes", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(r.db, sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/portfolio/internal/codestore"
	"github.com/xxxsen/portfolio/internal/model"
	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
	"github.com/xxxsen/portfolio/internal/pkg/timeutil"
)

const DefaultCodeTTL = 15 * time.Minute

// PasswordResetService runs the request, verify and reset steps. Each email
// holds at most one live code; a new request replaces the previous one.
type PasswordResetService struct {
	users  CredentialStore
	codes  codestore.Store
	sender EmailSender
	ttl    time.Duration
	now    timeutil.Clock
}

func NewPasswordResetService(users CredentialStore, codes codestore.Store, sender EmailSender, ttl time.Duration, now timeutil.Clock) *PasswordResetService {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &PasswordResetService{users: users, codes: codes, sender: sender, ttl: ttl, now: now}
}

func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return appErr.ErrInvalid
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}
	code, err := codestore.NewCode()
	if err != nil {
		return err
	}
	now := s.now.Now()
	entry := &model.VerificationCode{
		Email:     email,
		Code:      code,
		Ctime:     now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	if err := s.codes.Put(ctx, entry); err != nil {
		return err
	}
	if err := s.sender.Send(email, resetCodeSubject, resetCodeBody(code, s.ttl)); err != nil {
		logutil.GetLogger(ctx).Error("send reset code failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %v", appErr.ErrNotification, err)
	}
	return nil
}

// VerifyCode checks a code without consuming it.
func (s *PasswordResetService) VerifyCode(ctx context.Context, email, code string) error {
	_, err := s.checkCode(ctx, strings.TrimSpace(email), code)
	return err
}

func (s *PasswordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.TrimSpace(email)
	if newPassword == "" {
		return appErr.ErrInvalid
	}
	entry, err := s.checkCode(ctx, email, code)
	if err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// consume before writing so a code authorizes one reset only
	consumed, err := s.codes.DeleteIf(ctx, email, entry.Code)
	if err != nil {
		return err
	}
	if !consumed {
		return appErr.ErrNoCode
	}
	if err := s.users.UpdatePassword(ctx, user.ID, newPassword, s.now.Now().Unix()); err != nil {
		s.restore(ctx, entry)
		return err
	}
	return nil
}

// restore puts a consumed code back after a failed write, unless a newer
// code has taken the slot meanwhile.
func (s *PasswordResetService) restore(ctx context.Context, entry *model.VerificationCode) {
	logger := logutil.GetLogger(ctx).With(zap.String("email", entry.Email))
	if _, err := s.codes.Get(ctx, entry.Email); !appErr.IsNotFound(err) {
		return
	}
	if err := s.codes.Put(ctx, entry); err != nil {
		logger.Warn("restore verification code failed", zap.Error(err))
	}
}

func (s *PasswordResetService) checkCode(ctx context.Context, email, code string) (*model.VerificationCode, error) {
	if email == "" {
		return nil, appErr.ErrInvalid
	}
	entry, err := s.codes.Get(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrNoCode
		}
		return nil, err
	}
	if entry.Expired(s.now.Now()) {
		// only drop the entry we looked at; a newer code may have replaced it
		if _, err := s.codes.DeleteIf(ctx, email, entry.Code); err != nil {
			return nil, err
		}
		return nil, appErr.ErrExpired
	}
	given := strings.ToLower(strings.TrimSpace(code))
	if subtle.ConstantTimeCompare([]byte(given), []byte(entry.Code)) != 1 {
		return nil, appErr.ErrMismatch
	}
	return entry, nil
}

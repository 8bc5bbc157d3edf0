package service

import (
	"context"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/portfolio/internal/model"
	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
	"github.com/xxxsen/portfolio/internal/pkg/password"
	"github.com/xxxsen/portfolio/internal/pkg/timeutil"
)

type AuthService struct {
	users  CredentialStore
	hasher *password.Hasher
	tokens TokenIssuer
	sender EmailSender
	now    timeutil.Clock
	wg     sync.WaitGroup
}

func NewAuthService(users CredentialStore, hasher *password.Hasher, tokens TokenIssuer, sender EmailSender, now timeutil.Clock) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, sender: sender, now: now}
}

func (s *AuthService) SignUp(ctx context.Context, username, email, plainPassword string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || plainPassword == "" {
		return nil, "", appErr.ErrInvalid
	}
	if _, err := s.users.GetByUsernameOrEmail(ctx, username, email); err == nil {
		return nil, "", appErr.ErrConflict
	} else if !appErr.IsNotFound(err) {
		return nil, "", err
	}
	now := s.now.Now().Unix()
	user := &model.User{
		ID:       newID(),
		Username: username,
		Email:    email,
		Ctime:    now,
		Mtime:    now,
	}
	if err := s.users.Create(ctx, user, plainPassword); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	s.sendWelcome(ctx, user)
	return user, token, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, "", appErr.ErrAuthFailed
		}
		return nil, "", err
	}
	if !s.hasher.Verify(plainPassword, user.PasswordHash) {
		return nil, "", appErr.ErrAuthFailed
	}
	if s.hasher.NeedsRehash(user.PasswordHash) {
		if err := s.users.UpdatePassword(ctx, user.ID, plainPassword, s.now.Now().Unix()); err != nil {
			logutil.GetLogger(ctx).Warn("rehash password failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, appErr.ErrUnauthorized
	}
	return s.users.GetByID(ctx, userID)
}

// Wait blocks until queued welcome emails have been handed to the sender.
func (s *AuthService) Wait() {
	s.wg.Wait()
}

func (s *AuthService) sendWelcome(ctx context.Context, user *model.User) {
	if s.sender == nil {
		return
	}
	logger := logutil.GetLogger(ctx)
	to, body := user.Email, welcomeBody(user.Username)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sender.Send(to, welcomeSubject, body); err != nil {
			logger.Warn("send welcome email failed", zap.String("email", to), zap.Error(err))
		}
	}()
}

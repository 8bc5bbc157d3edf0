package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/portfolio/internal/model"
	"github.com/xxxsen/portfolio/internal/oauth"
	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
	"github.com/xxxsen/portfolio/internal/pkg/timeutil"
)

const maxUsernameSuffixAttempts = 3

type OAuthService struct {
	users             CredentialStore
	tokens            TokenIssuer
	providers         map[string]oauth.Provider
	linkVerifiedEmail bool
	now               timeutil.Clock
}

func NewOAuthService(users CredentialStore, tokens TokenIssuer, providers map[string]oauth.Provider, linkVerifiedEmail bool, now timeutil.Clock) *OAuthService {
	if providers == nil {
		providers = map[string]oauth.Provider{}
	}
	return &OAuthService{
		users:             users,
		tokens:            tokens,
		providers:         providers,
		linkVerifiedEmail: linkVerifiedEmail,
		now:               now,
	}
}

func (s *OAuthService) GetAuthURL(provider, state string) (string, error) {
	impl := s.providers[strings.ToLower(provider)]
	if impl == nil {
		return "", appErr.ErrInvalid
	}
	return impl.AuthURL(state)
}

func (s *OAuthService) ExchangeCode(ctx context.Context, provider, code string) (*oauth.Profile, error) {
	impl := s.providers[strings.ToLower(provider)]
	if impl == nil {
		return nil, federationErr(appErr.ErrInvalid)
	}
	profile, err := impl.ExchangeCode(ctx, code)
	if err != nil {
		return nil, federationErr(err)
	}
	return profile, nil
}

// Resolve maps a verified provider profile to exactly one account.
//
// A profile whose federated id is already stored on the account with the same
// email signs that account in. An account with no federated id is linked only
// when linking is enabled and the provider vouches for the email. Everything
// else is refused so an email collision never hands over a password account.
func (s *OAuthService) Resolve(ctx context.Context, profile *oauth.Profile) (*model.User, error) {
	if profile == nil || profile.ProviderUserID == "" || profile.Email == "" {
		return nil, federationErr(appErr.ErrInvalid)
	}
	user, err := s.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		return s.reconcile(ctx, user, profile)
	}
	if !appErr.IsNotFound(err) {
		return nil, federationErr(err)
	}
	return s.create(ctx, profile)
}

func (s *OAuthService) LoginOrCreate(ctx context.Context, profile *oauth.Profile) (*model.User, string, error) {
	user, err := s.Resolve(ctx, profile)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *OAuthService) reconcile(ctx context.Context, user *model.User, profile *oauth.Profile) (*model.User, error) {
	if user.GoogleID == profile.ProviderUserID {
		return user, nil
	}
	if user.GoogleID != "" || !s.linkVerifiedEmail || !profile.EmailVerified {
		logutil.GetLogger(ctx).Warn("refuse to link federated identity",
			zap.String("user_id", user.ID),
			zap.String("provider", profile.Provider),
			zap.Bool("email_verified", profile.EmailVerified))
		return nil, federationErr(appErr.ErrConflict)
	}
	user.GoogleID = profile.ProviderUserID
	user.Mtime = s.now.Now().Unix()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, federationErr(err)
	}
	return user, nil
}

func (s *OAuthService) create(ctx context.Context, profile *oauth.Profile) (*model.User, error) {
	base := strings.TrimSpace(profile.DisplayName)
	if base == "" {
		base = strings.SplitN(profile.Email, "@", 2)[0]
	}
	secret := newSecret()
	for attempt := 0; attempt <= maxUsernameSuffixAttempts; attempt++ {
		username := base
		if attempt > 0 {
			username = fmt.Sprintf("%s-%s", base, newSuffix())
		}
		now := s.now.Now().Unix()
		user := &model.User{
			ID:       newID(),
			Username: username,
			Email:    profile.Email,
			GoogleID: profile.ProviderUserID,
			Ctime:    now,
			Mtime:    now,
		}
		err := s.users.Create(ctx, user, secret)
		if err == nil {
			return user, nil
		}
		if !appErr.IsConflict(err) {
			return nil, federationErr(err)
		}
		// the email may have been claimed by a concurrent callback
		if existing, lookupErr := s.users.GetByEmail(ctx, profile.Email); lookupErr == nil {
			return s.reconcile(ctx, existing, profile)
		}
	}
	return nil, federationErr(appErr.ErrConflict)
}

func federationErr(err error) error {
	return fmt.Errorf("%w: %w", appErr.ErrFederation, err)
}

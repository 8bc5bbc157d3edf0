package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xxxsen/portfolio/internal/codestore"
	"github.com/xxxsen/portfolio/internal/oauth"
	"github.com/xxxsen/portfolio/internal/pkg/jwt"
	"github.com/xxxsen/portfolio/internal/pkg/password"
	"github.com/xxxsen/portfolio/internal/pkg/timeutil"
	"github.com/xxxsen/portfolio/internal/repo"
	"github.com/xxxsen/portfolio/internal/testutil"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Clock() timeutil.Clock {
	return func() time.Time { return c.now }
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeProvider struct {
	profile *oauth.Profile
	err     error
}

func (f *fakeProvider) Name() string { return "google" }

func (f *fakeProvider) AuthURL(state string) (string, error) {
	return "https://accounts.example.com/auth?state=" + state, nil
}

func (f *fakeProvider) ExchangeCode(_ context.Context, _ string) (*oauth.Profile, error) {
	return f.profile, f.err
}

type fixture struct {
	db       *sqlx.DB
	users    *repo.UserRepo
	codeRepo *repo.VerificationCodeRepo
	hasher   *password.Hasher
	signer   *jwt.Signer
	codes    codestore.Store
	sender   *mockSender
	clock    *testClock
	provider *fakeProvider
	auth     *AuthService
	oauth    *OAuthService
	reset    *PasswordResetService
}

func newFixture(t *testing.T, storeKind string) *fixture {
	t.Helper()
	db := testutil.OpenTestDB(t)
	f := &fixture{
		db:       db,
		hasher:   password.NewHasher(bcrypt.MinCost),
		sender:   &mockSender{},
		clock:    &testClock{now: time.Unix(1_700_000_000, 0)},
		provider: &fakeProvider{},
	}
	f.users = repo.NewUserRepo(db, f.hasher)
	f.codeRepo = repo.NewVerificationCodeRepo(db)
	codes, err := codestore.New(storeKind, 128, 2*DefaultCodeTTL, f.codeRepo)
	require.NoError(t, err)
	f.codes = codes
	signer, err := jwt.NewSigner([]byte("test-secret"), f.clock.Clock())
	require.NoError(t, err)
	f.signer = signer

	f.auth = NewAuthService(f.users, f.hasher, f.signer, f.sender, f.clock.Clock())
	f.oauth = NewOAuthService(f.users, f.signer, map[string]oauth.Provider{"google": f.provider}, true, f.clock.Clock())
	f.reset = NewPasswordResetService(f.users, f.codes, f.sender, DefaultCodeTTL, f.clock.Clock())
	return f
}

// signUp registers an account and drains the welcome email.
func (f *fixture) signUp(t *testing.T, username, email, plain string) string {
	t.Helper()
	f.sender.On("Send", email, welcomeSubject, mock.Anything).Return(nil).Once()
	user, _, err := f.auth.SignUp(context.Background(), username, email, plain)
	require.NoError(t, err)
	f.auth.Wait()
	return user.ID
}

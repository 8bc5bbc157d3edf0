package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xxxsen/portfolio/internal/codestore"
	"github.com/xxxsen/portfolio/internal/middleware"
	"github.com/xxxsen/portfolio/internal/oauth"
	"github.com/xxxsen/portfolio/internal/pkg/jwt"
	"github.com/xxxsen/portfolio/internal/pkg/password"
	"github.com/xxxsen/portfolio/internal/pkg/timeutil"
	"github.com/xxxsen/portfolio/internal/repo"
	"github.com/xxxsen/portfolio/internal/service"
	"github.com/xxxsen/portfolio/internal/testutil"
)

const testFrontend = "http://frontend.test"

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

type fakeProvider struct {
	profile *oauth.Profile
	err     error
}

func (f *fakeProvider) Name() string { return "google" }

func (f *fakeProvider) AuthURL(state string) (string, error) {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state), nil
}

func (f *fakeProvider) ExchangeCode(_ context.Context, _ string) (*oauth.Profile, error) {
	return f.profile, f.err
}

type testEnv struct {
	db       *sqlx.DB
	engine   *gin.Engine
	sender   *mockSender
	provider *fakeProvider
	codes    codestore.Store
	signer   *jwt.Signer
}

func setupEnv(t *testing.T, resetWindow time.Duration) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.OpenTestDB(t)
	hasher := password.NewHasher(bcrypt.MinCost)
	users := repo.NewUserRepo(db, hasher)
	codes := codestore.NewMemoryStore(64, time.Hour)
	signer, err := jwt.NewSigner([]byte("handler-secret"), timeutil.Clock(nil))
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		sender:   &mockSender{},
		provider: &fakeProvider{},
		codes:    codes,
		signer:   signer,
	}
	env.sender.On("Send", mock.Anything, "Welcome to Our Portfolio!", mock.Anything).Return(nil).Maybe()

	authService := service.NewAuthService(users, hasher, signer, env.sender, nil)
	t.Cleanup(authService.Wait)
	oauthService := service.NewOAuthService(users, signer, map[string]oauth.Provider{"google": env.provider}, true, nil)
	resetService := service.NewPasswordResetService(users, codes, env.sender, service.DefaultCodeTTL, nil)

	deps := RouterDeps{
		Auth:           NewAuthHandler(authService),
		OAuth:          NewOAuthHandler(oauthService, testFrontend),
		Password:       NewPasswordHandler(resetService),
		Tokens:         signer,
		ResetRateLimit: resetWindow,
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	RegisterRoutes(engine.Group("/api"), deps)
	env.engine = engine
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) countUsers(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, "SELECT COUNT(*) FROM users"))
	return n
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (e *testEnv) signUp(t *testing.T, username, email, plain string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/signup", gin.H{"username": username, "email": email, "password": plain}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["token"].(string)
}

package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/portfolio/internal/service"
)

const (
	oauthStateTTL      = 10 * time.Minute
	oauthStateCapacity = 4096
)

type OAuthHandler struct {
	oauth       *service.OAuthService
	frontendURL string
	stateStore  *oauthStateStore
}

func NewOAuthHandler(oauth *service.OAuthService, frontendURL string) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, frontendURL: frontendURL, stateStore: newOAuthStateStore()}
}

// Redirect sends the browser to the provider's consent page.
func (h *OAuthHandler) Redirect(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := h.stateStore.Create(provider)
		authURL, err := h.oauth.GetAuthURL(provider, state)
		if err != nil {
			handleError(c, err, "Authentication failed")
			return
		}
		c.Redirect(http.StatusFound, authURL)
	}
}

// Callback never fails the request; every outcome is a redirect to the front end.
func (h *OAuthHandler) Callback(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := logutil.GetLogger(ctx).With(zap.String("provider", provider))
		if denied := c.Query("error"); denied != "" {
			logger.Warn("provider denied authorization", zap.String("error", denied))
			h.redirectAuthError(c)
			return
		}
		code := c.Query("code")
		state := c.Query("state")
		if code == "" || state == "" {
			h.redirectAuthError(c)
			return
		}
		if stored, ok := h.stateStore.Consume(state); !ok || stored != provider {
			logger.Warn("oauth state rejected")
			h.redirectAuthError(c)
			return
		}
		profile, err := h.oauth.ExchangeCode(ctx, provider, code)
		if err != nil {
			logger.Error("oauth exchange failed", zap.Error(err))
			h.redirectAuthError(c)
			return
		}
		user, token, err := h.oauth.LoginOrCreate(ctx, profile)
		if err != nil {
			logger.Error("oauth login failed", zap.String("email", profile.Email), zap.Error(err))
			h.redirectAuthError(c)
			return
		}
		logger.Info("oauth login", zap.String("user_id", user.ID))
		c.Redirect(http.StatusFound, h.frontendURL+"/auth-callback?token="+url.QueryEscape(token))
	}
}

func (h *OAuthHandler) redirectAuthError(c *gin.Context) {
	c.Redirect(http.StatusFound, h.frontendURL+"/signin?error=authentication_failed")
}

// oauthStateStore keeps one-time state values handed out with consent redirects.
type oauthStateStore struct {
	mu    sync.Mutex
	items *expirable.LRU[string, string]
}

func newOAuthStateStore() *oauthStateStore {
	return &oauthStateStore{items: expirable.NewLRU[string, string](oauthStateCapacity, nil, oauthStateTTL)}
}

func (s *oauthStateStore) Create(provider string) string {
	state := randomState()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Add(state, provider)
	return state
}

func (s *oauthStateStore) Consume(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	provider, ok := s.items.Get(state)
	if !ok {
		return "", false
	}
	s.items.Remove(state)
	return provider, true
}

func randomState() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

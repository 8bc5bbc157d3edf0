package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/portfolio/internal/oauth"
)

func (e *testEnv) startOAuth(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/api/auth/google", nil, "")
	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func (e *testEnv) callback(t *testing.T, query string) *url.URL {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/api/auth/google/callback?"+query, nil, "")
	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return location
}

func TestOAuthCallbackCreatesThenReuses(t *testing.T) {
	env := setupEnv(t, 0)
	env.provider.profile = &oauth.Profile{
		Provider:       "google",
		ProviderUserID: "g-1",
		DisplayName:    "Ada",
		Email:          "ada@example.com",
		EmailVerified:  true,
	}

	subjects := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		state := env.startOAuth(t)
		location := env.callback(t, "code=ok&state="+url.QueryEscape(state))
		require.True(t, strings.HasPrefix(location.String(), testFrontend+"/auth-callback?"))
		subject, err := env.signer.Verify(location.Query().Get("token"))
		require.NoError(t, err)
		subjects = append(subjects, subject)
		require.Equal(t, 1, env.countUsers(t))
	}
	require.Equal(t, subjects[0], subjects[1])
}

func TestOAuthCallbackFailuresRedirect(t *testing.T) {
	env := setupEnv(t, 0)
	failure := testFrontend + "/signin?error=authentication_failed"

	require.Equal(t, failure, env.callback(t, "code=ok").String())
	require.Equal(t, failure, env.callback(t, "code=ok&state=unknown").String())
	require.Equal(t, failure, env.callback(t, "error=access_denied").String())

	state := env.startOAuth(t)
	env.provider.err = errors.New("exchange failed")
	require.Equal(t, failure, env.callback(t, "code=ok&state="+state).String())
	// state is single use
	env.provider.err = nil
	env.provider.profile = &oauth.Profile{Provider: "google", ProviderUserID: "g-1", Email: "a@example.com"}
	require.Equal(t, failure, env.callback(t, "code=ok&state="+state).String())

	env.signUp(t, "ada", "ada@example.com", "Secret123")
	env.provider.profile = &oauth.Profile{Provider: "google", ProviderUserID: "g-2", Email: "ada@example.com", EmailVerified: false}
	state = env.startOAuth(t)
	require.Equal(t, failure, env.callback(t, "code=ok&state="+state).String())
}

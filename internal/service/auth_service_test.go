package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
	"github.com/xxxsen/portfolio/internal/pkg/password"
	"github.com/xxxsen/portfolio/internal/repo"
)

func TestSignUpIssuesTokenAndWelcomes(t *testing.T) {
	f := newFixture(t, "memory")
	ctx := context.Background()
	f.sender.On("Send", "ada@example.com", welcomeSubject, mock.MatchedBy(func(body string) bool {
		return len(body) > 0
	})).Return(nil).Once()

	user, token, err := f.auth.SignUp(ctx, " ada ", "ada@example.com", "Secret123")
	require.NoError(t, err)
	f.auth.Wait()
	f.sender.AssertExpectations(t)

	require.Equal(t, "ada", user.Username)
	subject, err := f.signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, subject)

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", stored.PasswordHash)
	require.True(t, f.hasher.Verify("Secret123", stored.PasswordHash))
}

func TestSignUpRejectsDuplicates(t *testing.T) {
	f := newFixture(t, "memory")
	ctx := context.Background()
	f.signUp(t, "ada", "ada@example.com", "Secret123")

	_, _, err := f.auth.SignUp(ctx, "ada", "other@example.com", "Secret123")
	require.ErrorIs(t, err, appErr.ErrConflict)
	_, _, err = f.auth.SignUp(ctx, "grace", "ada@example.com", "Secret123")
	require.ErrorIs(t, err, appErr.ErrConflict)

	_, err = f.users.GetByUsernameOrEmail(ctx, "grace", "nobody@example.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestSignUpRequiresFields(t *testing.T) {
	f := newFixture(t, "memory")
	ctx := context.Background()
	for _, in := range [][3]string{
		{"", "a@example.com", "pw"},
		{"a", " ", "pw"},
		{"a", "a@example.com", ""},
	} {
		_, _, err := f.auth.SignUp(ctx, in[0], in[1], in[2])
		require.ErrorIs(t, err, appErr.ErrInvalid)
	}
}

func TestSignUpSurvivesWelcomeFailure(t *testing.T) {
	f := newFixture(t, "memory")
	f.sender.On("Send", "ada@example.com", welcomeSubject, mock.Anything).Return(errors.New("smtp down")).Once()

	user, token, err := f.auth.SignUp(context.Background(), "ada", "ada@example.com", "Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, user.ID)
	f.auth.Wait()
	f.sender.AssertExpectations(t)
}

func TestSignInUniformFailure(t *testing.T) {
	f := newFixture(t, "memory")
	ctx := context.Background()
	id := f.signUp(t, "ada", "ada@example.com", "Secret123")

	user, token, err := f.auth.SignIn(ctx, "ada@example.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, id, user.ID)
	subject, err := f.signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, id, subject)

	_, _, wrongPassword := f.auth.SignIn(ctx, "ada@example.com", "secret123")
	_, _, unknownEmail := f.auth.SignIn(ctx, "nobody@example.com", "Secret123")
	require.ErrorIs(t, wrongPassword, appErr.ErrAuthFailed)
	require.ErrorIs(t, unknownEmail, appErr.ErrAuthFailed)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestSignInRehashesWeakDigest(t *testing.T) {
	f := newFixture(t, "memory")
	ctx := context.Background()
	id := f.signUp(t, "ada", "ada@example.com", "Secret123")

	stronger := password.NewHasher(bcrypt.MinCost + 1)
	users := repo.NewUserRepo(f.db, stronger)
	auth := NewAuthService(users, stronger, f.signer, nil, f.clock.Clock())

	_, _, err := auth.SignIn(ctx, "ada@example.com", "Secret123")
	require.NoError(t, err)
	stored, err := users.GetByID(ctx, id)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost+1, cost)
	require.True(t, stronger.Verify("Secret123", stored.PasswordHash))
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t, "memory")
	ctx := context.Background()
	id := f.signUp(t, "ada", "ada@example.com", "Secret123")

	user, err := f.auth.CurrentUser(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)

	_, err = f.auth.CurrentUser(ctx, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = f.auth.CurrentUser(ctx, "")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
}

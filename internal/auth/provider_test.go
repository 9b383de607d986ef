package auth

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/transferlog/internal/db"
	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/notify"
	"github.com/erazemk/transferlog/internal/store"
)

func newTestProvider(t *testing.T) (*Provider, *notify.Recorder) {
	t.Helper()
	mail := &notify.Recorder{}
	return &Provider{
		DB:         db.NewTestDB(t),
		Secret:     "test-secret",
		Mailer:     mail,
		PublicURL:  "http://app.test",
		SystemName: "Test System",
	}, mail
}

func TestSignUpAndSignIn(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	s, err := p.SignUp(ctx, " Driver@Example.com ", "password123", "Driver")
	require.NoError(t, err)
	assert.Equal(t, "driver@example.com", s.User.Email)
	assert.Equal(t, model.ProviderPassword, s.User.Provider)
	assert.NotEmpty(t, s.Token)

	s, err = p.SignIn(ctx, "DRIVER@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Driver", s.Claims.Name)

	_, err = p.SignIn(ctx, "driver@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUpRejects(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "not-an-email", "password123", "")
	assert.ErrorIs(t, err, model.ErrInvalidEmail)

	_, err = p.SignUp(ctx, "a@example.com", "short", "")
	assert.ErrorIs(t, err, model.ErrPasswordTooShort)

	_, err = p.SignUp(ctx, "a@example.com", "password123", "")
	require.NoError(t, err)
	_, err = p.SignUp(ctx, "A@example.com", "password456", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestVerifyAndSignOut(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	s, err := p.SignUp(ctx, "a@example.com", "password123", "")
	require.NoError(t, err)

	claims, err := p.Verify(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, claims.UserID)

	require.NoError(t, p.SignOut(ctx, claims))
	_, err = p.Verify(ctx, s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, p.SignOut(ctx, nil))
}

func TestVerifyRejectsResetToken(t *testing.T) {
	p, _ := newTestProvider(t)
	user := &model.User{ID: "u1", Email: "a@example.com"}
	token, _, err := GenerateToken(p.Secret, user, PurposeReset, ResetExpiry)
	require.NoError(t, err)

	_, err = p.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignInExternal(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	s, err := p.SignInExternal(ctx, "g@example.com", "", model.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderGoogle, s.User.Provider)
	assert.True(t, s.User.EmailVerified)

	s2, err := p.SignInExternal(ctx, "G@example.com", "Gee", model.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, s2.User.ID)
	assert.Equal(t, "Gee", s2.User.DisplayName)

	// External accounts have no password to sign in with.
	_, err = p.SignIn(ctx, "g@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func linkToken(t *testing.T, msg notify.Message, path string) string {
	t.Helper()
	for _, line := range strings.Split(msg.Body, "\n") {
		if strings.HasPrefix(line, "http://app.test"+path) {
			u, err := url.Parse(strings.TrimSpace(line))
			require.NoError(t, err)
			return u.Query().Get("token")
		}
	}
	t.Fatalf("no %s link in %q", path, msg.Body)
	return ""
}

func TestPasswordReset(t *testing.T) {
	p, mail := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "a@example.com", "password123", "")
	require.NoError(t, err)
	mail.Reset()

	require.NoError(t, p.RequestPasswordReset(ctx, "A@example.com"))
	msgs := mail.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"a@example.com"}, msgs[0].To)
	assert.Contains(t, msgs[0].Body, "1 hour")

	token := linkToken(t, msgs[0], ResetPath)
	assert.True(t, p.ResetTokenValid(ctx, token))

	assert.ErrorIs(t, p.ResetPassword(ctx, token, "short"), model.ErrPasswordTooShort)
	require.NoError(t, p.ResetPassword(ctx, token, "new-password"))

	_, err = p.SignIn(ctx, "a@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "a@example.com", "new-password")
	assert.NoError(t, err)

	// The link works once.
	assert.False(t, p.ResetTokenValid(ctx, token))
	assert.ErrorIs(t, p.ResetPassword(ctx, token, "another-password"), ErrInvalidToken)
}

func TestPasswordResetUnknownAccount(t *testing.T) {
	p, mail := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.RequestPasswordReset(ctx, "ghost@example.com"))

	_, err := store.CreateUser(ctx, p.DB, "g@example.com", "", "", model.ProviderGoogle)
	require.NoError(t, err)
	require.NoError(t, p.RequestPasswordReset(ctx, "g@example.com"))

	assert.Empty(t, mail.Messages())
}

func TestPasswordResetRejectsSessionToken(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	s, err := p.SignUp(ctx, "a@example.com", "password123", "")
	require.NoError(t, err)
	assert.ErrorIs(t, p.ResetPassword(ctx, s.Token, "new-password"), ErrInvalidToken)
}

func TestPasswordResetMailFailure(t *testing.T) {
	p, mail := newTestProvider(t)
	ctx := context.Background()
	mail.Err = notify.ErrRelayUnavailable

	_, err := p.SignUp(ctx, "a@example.com", "password123", "")
	require.NoError(t, err)
	assert.ErrorIs(t, p.RequestPasswordReset(ctx, "a@example.com"), notify.ErrRelayUnavailable)
}

func TestEmailVerification(t *testing.T) {
	p, mail := newTestProvider(t)
	ctx := context.Background()

	s, err := p.SignUp(ctx, "a@example.com", "password123", "")
	require.NoError(t, err)
	assert.False(t, s.User.EmailVerified)

	claims, err := p.Verify(ctx, s.Token)
	require.NoError(t, err)
	assert.False(t, claims.Verified)
	assert.Empty(t, claims.AdminEmail())

	msgs := mail.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"a@example.com"}, msgs[0].To)
	token := linkToken(t, msgs[0], VerifyPath)

	// Session and verification tokens are not interchangeable.
	_, err = p.ConfirmEmail(ctx, s.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	user, err := p.ConfirmEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)

	// The existing session picks up the change without signing in again.
	claims, err = p.Verify(ctx, s.Token)
	require.NoError(t, err)
	assert.True(t, claims.Verified)
	assert.Equal(t, "a@example.com", claims.AdminEmail())

	_, err = p.ConfirmEmail(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Nothing more is sent once the address is confirmed.
	require.NoError(t, p.ResendVerification(ctx, claims))
	assert.Len(t, mail.Messages(), 1)
}

func TestResendVerification(t *testing.T) {
	p, mail := newTestProvider(t)
	ctx := context.Background()
	mail.Err = notify.ErrRelayUnavailable

	// A failed verification email does not block sign-up.
	s, err := p.SignUp(ctx, "a@example.com", "password123", "")
	require.NoError(t, err)
	assert.Empty(t, mail.Messages())

	mail.Err = nil
	require.NoError(t, p.ResendVerification(ctx, s.Claims))
	msgs := mail.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Body, "24 hours")
}

func TestSignInExternalVerifiesPasswordAccount(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "a@example.com", "password123", "")
	require.NoError(t, err)

	s, err := p.SignInExternal(ctx, "a@example.com", "", model.ProviderGoogle)
	require.NoError(t, err)
	claims, err := p.Verify(ctx, s.Token)
	require.NoError(t, err)
	assert.True(t, claims.Verified)
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	c := &Claims{Email: "a@example.com"}
	assert.Same(t, c, FromContext(NewContext(context.Background(), c)))
}

package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/afterlove/couplet/internal/api/store/drivers/sqlite"
	"github.com/afterlove/couplet/pkg/cryptox"
	"github.com/afterlove/couplet/pkg/jwtx"
	"github.com/stretchr/testify/require"

	apistore "github.com/afterlove/couplet/internal/api/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256([]byte(testSecret))
	require.NoError(t, err)

	return &AuthService{
		Store:    st,
		Hasher:   Argon2Hasher{},
		Tokens:   JWTIssuer{Signer: signer, Issuer: "couplet-test"},
		Verifier: jwtx.NewVerifierHS256([]byte(testSecret), "couplet-test"),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	user, token, err := svc.Register(ctx, "Alice@Example.COM", "Alice", "secret-password")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEmpty(t, token)

	t.Run("registration token is a valid session", func(t *testing.T) {
		userID, email, err := svc.ValidateSession(token)
		require.NoError(t, err)
		require.Equal(t, user.ID, userID)
		require.Equal(t, user.Email, email)
	})

	t.Run("login with normalized email", func(t *testing.T) {
		loggedIn, loginToken, err := svc.Login(ctx, "  ALICE@example.com ", "secret-password")
		require.NoError(t, err)
		require.Equal(t, user.ID, loggedIn.ID)
		require.NotEmpty(t, loginToken)
	})

	t.Run("stored hash never leaves the service as plaintext", func(t *testing.T) {
		require.NotContains(t, user.PasswordHash, "secret-password")
	})
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	_, _, err := svc.Register(ctx, "alice@example.com", "Alice", "secret-password")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "ALICE@example.com", "Other Alice", "another-password")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	_, _, err := svc.Register(ctx, "", "Alice", "secret-password")
	require.ErrorIs(t, err, ErrInvalidAuthRequest)

	_, _, err = svc.Register(ctx, "alice@example.com", "Alice", "")
	require.ErrorIs(t, err, ErrInvalidAuthRequest)

	_, _, err = svc.Register(ctx, "alice@example.com", "Alice", "short")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestLoginFailureIsUniform(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	_, _, err := svc.Register(ctx, "alice@example.com", "Alice", "secret-password")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "secret-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestValidateSessionRejectsBadTokens(t *testing.T) {
	svc := newTestAuthService(t)

	_, _, err := svc.ValidateSession("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Token signed with a different secret.
	other, err := jwtx.NewSignerHS256([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)
	forged, err := JWTIssuer{Signer: other, Issuer: "couplet-test"}.Issue("user-1", "x@example.com")
	require.NoError(t, err)

	_, _, err = svc.ValidateSession(forged)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	user, _, err := svc.Register(ctx, "alice@example.com", "Alice", "secret-password")
	require.NoError(t, err)

	t.Run("fresh account has no couple and no invitations", func(t *testing.T) {
		profile, err := svc.GetProfile(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.ID, profile.User.ID)
		require.Nil(t, profile.Couple)
		require.Empty(t, profile.InvitationsSent)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, "missing-user")
		require.ErrorIs(t, err, apistore.ErrNotFound)
	})
}

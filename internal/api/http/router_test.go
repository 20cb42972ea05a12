package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/afterlove/couplet/internal/api/service"
	"github.com/afterlove/couplet/pkg/cryptox"
	"github.com/afterlove/couplet/pkg/httpx"
	"github.com/afterlove/couplet/pkg/jwtx"
	"github.com/afterlove/couplet/pkg/slogx"
	"github.com/stretchr/testify/require"

	"github.com/afterlove/couplet/internal/api/store/drivers/sqlite"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256([]byte(testSecret))
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256([]byte(testSecret), "couplet-test")

	logger := slogx.New(slogx.Config{Service: "couplet-test", Level: "error", Format: "text"})

	router := NewRouter(signer, verifier, "test", st, logger, httpx.CORSConfig{AllowOrigin: "*"})
	router.AuthService = &service.AuthService{
		Store:    st,
		Hasher:   service.Argon2Hasher{},
		Tokens:   service.JWTIssuer{Signer: signer, Issuer: "couplet-test"},
		Verifier: verifier,
	}
	router.UserService = &service.UserService{Store: st, Hasher: service.Argon2Hasher{}}
	router.PairingService = &service.PairingService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func registerAccount(t *testing.T, srv *httptest.Server, email, name string) AuthResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", RegisterRequest{
		Email:    email,
		Name:     name,
		Password: "secret-password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[AuthResponse](t, resp)
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	srv := newTestServer(t)

	registered := registerAccount(t, srv, "alice@example.com", "Alice")
	require.NotEmpty(t, registered.AccessToken)
	require.Equal(t, "alice@example.com", registered.User.Email)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", RegisterRequest{
			Email:    "ALICE@example.com",
			Name:     "Alice Again",
			Password: "secret-password",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		body := decode[httpx.ErrorResponse](t, resp)
		require.Equal(t, "email_taken", body.Error)
	})

	t.Run("login returns a fresh token", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", LoginRequest{
			Email:    "alice@example.com",
			Password: "secret-password",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[AuthResponse](t, resp)
		require.NotEmpty(t, body.AccessToken)
	})

	t.Run("bad credentials are uniform 401", func(t *testing.T) {
		for _, req := range []LoginRequest{
			{Email: "alice@example.com", Password: "wrong"},
			{Email: "nobody@example.com", Password: "secret-password"},
		} {
			resp := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", req)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body := decode[httpx.ErrorResponse](t, resp)
			require.Equal(t, "invalid_credentials", body.Error)
		}
	})

	t.Run("profile requires a token", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/v1/auth/profile", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("profile with token", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/v1/auth/profile", registered.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[ProfileResponse](t, resp)
		require.Equal(t, registered.User.ID, body.User.ID)
		require.Nil(t, body.Couple)
		require.Empty(t, body.InvitationsSent)
	})
}

func TestInvitationFlow(t *testing.T) {
	srv := newTestServer(t)

	alice := registerAccount(t, srv, "alice@example.com", "Alice")
	bob := registerAccount(t, srv, "bob@example.com", "Bob")
	carol := registerAccount(t, srv, "carol@example.com", "Carol")

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/invitations", alice.AccessToken, CreateInvitationRequest{
		InvitedEmail: "bob@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	invitation := decode[InvitationResponse](t, resp)
	require.Equal(t, "PENDING", invitation.Status)

	t.Run("second invitation conflicts", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/invitations", alice.AccessToken, CreateInvitationRequest{
			InvitedEmail: "carol@example.com",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("non-inviter cannot cancel", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, srv.URL+"/v1/invitations/"+invitation.ID, bob.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("inviter cannot accept", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/invitations/"+invitation.ID+"/accept", alice.AccessToken, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/invitations/"+invitation.ID+"/accept", bob.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	accepted := decode[InvitationResponse](t, resp)
	require.Equal(t, "ACCEPTED", accepted.Status)

	t.Run("acceptance is single use", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/invitations/"+invitation.ID+"/accept", carol.AccessToken, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("both partners report each other", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/v1/users/me/partner-status", alice.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		status := decode[PartnerStatusResponse](t, resp)
		require.True(t, status.HasPartner)
		require.Equal(t, "Bob", status.PartnerName)

		resp = doJSON(t, http.MethodGet, srv.URL+"/v1/users/me/partner-status", bob.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		status = decode[PartnerStatusResponse](t, resp)
		require.True(t, status.HasPartner)
		require.Equal(t, "Alice", status.PartnerName)
	})

	t.Run("paired user cannot invite", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/invitations", bob.AccessToken, CreateInvitationRequest{
			InvitedEmail: "carol@example.com",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("missing invitation is 404", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/invitations/does-not-exist/accept", carol.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCancelInvitationFlow(t *testing.T) {
	srv := newTestServer(t)

	alice := registerAccount(t, srv, "alice@example.com", "Alice")
	bob := registerAccount(t, srv, "bob@example.com", "Bob")

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/invitations", alice.AccessToken, CreateInvitationRequest{
		InvitedEmail: "bob@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	invitation := decode[InvitationResponse](t, resp)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/v1/invitations/"+invitation.ID, alice.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	t.Run("cancelled invitation cannot be accepted", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/invitations/"+invitation.ID+"/accept", bob.AccessToken, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("partner status is clean after cancel", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/v1/users/me/partner-status", alice.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		status := decode[PartnerStatusResponse](t, resp)
		require.False(t, status.HasPartner)
		require.False(t, status.HasInvitation)
	})
}

func TestUsersCRUD(t *testing.T) {
	srv := newTestServer(t)

	alice := registerAccount(t, srv, "alice@example.com", "Alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/users", alice.AccessToken, CreateUserRequest{
		Email: "charlie@example.com",
		Name:  "Charlie",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[UserResponse](t, resp)
	require.Equal(t, "charlie@example.com", created.Email)

	t.Run("placeholder credential rejects login", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", LoginRequest{
			Email:    "charlie@example.com",
			Password: "anything-at-all",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("list includes both users", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/v1/users", alice.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		users := decode[[]UserResponse](t, resp)
		require.Len(t, users, 2)
	})

	t.Run("patch updates name only", func(t *testing.T) {
		name := "Charles"
		resp := doJSON(t, http.MethodPatch, srv.URL+"/v1/users/"+created.ID, alice.AccessToken, UpdateUserRequest{Name: &name})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		updated := decode[UserResponse](t, resp)
		require.Equal(t, "Charles", updated.Name)
		require.Equal(t, "charlie@example.com", updated.Email)
	})

	t.Run("short password rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, srv.URL+"/v1/users/"+created.ID+"/password", alice.AccessToken, UpdatePasswordRequest{Password: "short"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("password set enables login", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, srv.URL+"/v1/users/"+created.ID+"/password", alice.AccessToken, UpdatePasswordRequest{Password: "charlie-password"})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", LoginRequest{
			Email:    "charlie@example.com",
			Password: "charlie-password",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("delete returns the removed record", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, srv.URL+"/v1/users/"+created.ID, alice.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		removed := decode[UserResponse](t, resp)
		require.Equal(t, created.ID, removed.ID)

		resp = doJSON(t, http.MethodGet, srv.URL+"/v1/users/"+created.ID, alice.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decode[HealthResponse](t, resp)
	require.Equal(t, "ok", health.Status)

	resp = doJSON(t, http.MethodGet, srv.URL+"/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decode[HealthResponse](t, resp)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}

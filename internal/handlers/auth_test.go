package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerpress/internal/models"
	"partnerpress/internal/session"
)

func TestLoginPageRenders(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.LoginPage(rec, request(http.MethodGet, "/admin/login", nil, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestLoginSubmitBadPassword(t *testing.T) {
	env := newTestEnv(t)
	u := testUser(t, env, models.RoleEditor, "correct-horse")

	form := url.Values{"email": {u.Email}, "password": {"wrong"}}
	rec := httptest.NewRecorder()
	env.Auth.LoginSubmit(rec, request(http.MethodPost, "/admin/login", form, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginSubmitRedirectsToSetup(t *testing.T) {
	env := newTestEnv(t)
	u := testUser(t, env, models.RoleEditor, "correct-horse")

	form := url.Values{"email": {u.Email}, "password": {"correct-horse"}}
	rec := httptest.NewRecorder()
	env.Auth.LoginSubmit(rec, request(http.MethodPost, "/admin/login", form, nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/2fa/setup", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
}

func TestTwoFactorFlow(t *testing.T) {
	env := newTestEnv(t)
	u := testUser(t, env, models.RoleEditor, "correct-horse")
	ctx := context.Background()

	// Start a half-authenticated session the way LoginSubmit does.
	login := httptest.NewRecorder()
	sess := &session.Data{UserID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role}
	_, err := env.Sessions.Create(ctx, login, sess)
	require.NoError(t, err)
	cookie := login.Result().Cookies()[0]

	rec := httptest.NewRecorder()
	env.Auth.TwoFASetupPage(rec, request(http.MethodGet, "/admin/2fa/setup", nil, sess))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,")

	stored, err := env.UserStore.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TOTPSecret)

	// A wrong code re-renders the setup page with the same secret.
	bad := request(http.MethodPost, "/admin/2fa/verify", url.Values{"code": {"000000"}}, sess)
	bad.AddCookie(cookie)
	rec = httptest.NewRecorder()
	env.Auth.TwoFAVerifySubmit(rec, bad)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), *stored.TOTPSecret)

	code, err := totp.GenerateCode(*stored.TOTPSecret, time.Now())
	require.NoError(t, err)
	good := request(http.MethodPost, "/admin/2fa/verify", url.Values{"code": {code}}, sess)
	good.AddCookie(cookie)
	rec = httptest.NewRecorder()
	env.Auth.TwoFAVerifySubmit(rec, good)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/posts", rec.Header().Get("Location"))

	enabled, err := env.UserStore.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, enabled.TOTPEnabled)

	check := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)
	check.AddCookie(cookie)
	saved, err := env.Sessions.Get(ctx, check)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.TwoFADone)
}

func TestTwoFASetupRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.TwoFASetupPage(rec, request(http.MethodGet, "/admin/2fa/setup", nil, nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)
	u := testUser(t, env, models.RoleEditor, "correct-horse")
	ctx := context.Background()

	login := httptest.NewRecorder()
	_, err := env.Sessions.Create(ctx, login, testSession(u))
	require.NoError(t, err)
	cookie := login.Result().Cookies()[0]

	req := request(http.MethodPost, "/admin/logout", url.Values{}, testSession(u))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.Auth.Logout(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	check := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)
	check.AddCookie(cookie)
	saved, err := env.Sessions.Get(ctx, check)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"partnerpress/internal/models"
	"partnerpress/internal/session"
)

func newTestSession(role models.Role, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "editor@test.local",
		DisplayName: "Editor",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func serve(h http.Handler, sess *session.Data) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/terms/partner", nil)
	if sess != nil {
		req = req.WithContext(WithSession(req.Context(), sess))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSessionFromCtx(t *testing.T) {
	assert.Nil(t, SessionFromCtx(context.Background()))
	assert.Nil(t, SessionFromCtx(context.WithValue(context.Background(), SessionKey, "wrong type")))

	sess := newTestSession(models.RoleEditor, true)
	assert.Same(t, sess, SessionFromCtx(WithSession(context.Background(), sess)))
}

func TestRequireAuth(t *testing.T) {
	next, called := okHandler()
	rr := serve(RequireAuth(next), nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/login", rr.Header().Get("Location"))
	assert.False(t, *called)

	next, called = okHandler()
	rr = serve(RequireAuth(next), newTestSession(models.RoleSubscriber, false))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, *called)
}

func TestRequire2FA(t *testing.T) {
	next, called := okHandler()
	rr := serve(Require2FA(next), newTestSession(models.RoleAdmin, false))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/2fa/verify", rr.Header().Get("Location"))
	assert.False(t, *called)

	next, called = okHandler()
	serve(Require2FA(next), newTestSession(models.RoleAdmin, true))
	assert.True(t, *called)
}

func TestRequireEditContent(t *testing.T) {
	tests := []struct {
		name string
		sess *session.Data
		want int
	}{
		{"no session", nil, http.StatusForbidden},
		{"subscriber", newTestSession(models.RoleSubscriber, true), http.StatusForbidden},
		{"contributor", newTestSession(models.RoleContributor, true), http.StatusOK},
		{"editor", newTestSession(models.RoleEditor, true), http.StatusOK},
		{"admin", newTestSession(models.RoleAdmin, true), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			assert.Equal(t, tt.want, serve(RequireEditContent(next), tt.sess).Code)
		})
	}
}

func TestCanEditContent(t *testing.T) {
	assert.False(t, CanEditContent(context.Background()))
	assert.True(t, CanEditContent(WithSession(context.Background(), newTestSession(models.RoleAuthor, true))))
	assert.False(t, CanEditContent(WithSession(context.Background(), newTestSession(models.RoleSubscriber, true))))
}

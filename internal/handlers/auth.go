// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"partnerpress/internal/middleware"
	"partnerpress/internal/models"
	"partnerpress/internal/render"
	"partnerpress/internal/session"
	"partnerpress/internal/store"
)

const (
	totpIssuer = "PartnerPress"

	// afterLogin is where a fully authenticated user lands.
	afterLogin = "/admin/posts"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.TwoFADone {
		http.Redirect(w, r, afterLogin, http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", &render.PageData{Title: "Log in"})
}

// LoginSubmit checks the credentials and starts a session that still needs
// the TOTP step.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	loginError := func(status int, msg string) {
		a.renderer.PageStatus(w, r, status, "login", &render.PageData{
			Title: "Log in",
			Data:  map[string]any{"Error": msg, "Email": email},
		})
	}

	user, err := a.userStore.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		loginError(http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, password) {
		slog.Warn("failed login", "email", email, "remote", r.RemoteAddr)
		loginError(http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	_, err = a.sessions.Create(ctx, w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.Needs2FASetup() {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
}

// TwoFASetupPage generates a TOTP secret for a user without 2FA and shows
// it as a QR code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	user, err := a.userStore.FindByID(ctx, sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa setup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !user.Needs2FASetup() {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := a.userStore.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderSetup(w, r, http.StatusOK, key, "")
}

func (a *Auth) renderSetup(w http.ResponseWriter, r *http.Request, status int, key *otp.Key, errMsg string) {
	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderer.PageStatus(w, r, status, "2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data: map[string]any{
			"QRCode": base64.StdEncoding.EncodeToString(qrPNG),
			"Secret": key.Secret(),
			"Error":  errMsg,
		},
	})
}

// TwoFAVerifyPage renders the code entry form.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "2fa_verify", &render.PageData{Title: "Two-Factor Authentication"})
}

// TwoFAVerifySubmit validates the TOTP code, enabling 2FA on first use,
// and marks the session as fully authenticated.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	user, err := a.userStore.FindByID(ctx, sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))
	if !totp.Validate(code, *user.TOTPSecret) {
		a.invalidCode(w, r, user)
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(ctx, user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	sess.Role = user.Role
	if err := a.sessions.Update(ctx, r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user signed in", "user_id", user.ID, "role", user.Role)
	http.Redirect(w, r, afterLogin, http.StatusSeeOther)
}

// invalidCode re-renders the page the code came from.
func (a *Auth) invalidCode(w http.ResponseWriter, r *http.Request, user *models.User) {
	const msg = "Invalid code. Please try again."
	if user.TOTPEnabled {
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "2fa_verify", &render.PageData{
			Title: "Two-Factor Authentication",
			Data:  map[string]any{"Error": msg},
		})
		return
	}

	key, err := otp.NewKeyFromURL(totpKeyURL(user.Email, *user.TOTPSecret))
	if err != nil {
		slog.Error("rebuild totp key failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderSetup(w, r, http.StatusUnauthorized, key, msg)
}

// totpKeyURL builds the otpauth:// URL for an existing secret.
func totpKeyURL(email, secret string) string {
	return "otpauth://totp/" + totpIssuer + ":" + email + "?secret=" + secret + "&issuer=" + totpIssuer
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

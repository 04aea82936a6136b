package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/vetclinic/internal/application"
	"github.com/example/vetclinic/internal/http/views"
	"github.com/example/vetclinic/internal/persistence"
)

// AuthService captures the authentication flows the handler depends on.
type AuthService interface {
	Register(ctx context.Context, input application.RegisterInput) (persistence.User, error)
	Login(ctx context.Context, input application.LoginInput) (application.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves the registration, login, and logout pages.
type AuthHandler struct {
	service   AuthService
	responder responder
	logger    *slog.Logger
}

// NewAuthHandler wires the auth handler.
func NewAuthHandler(service AuthService, renderer *views.Renderer, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(renderer, base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// ShowRegister renders the empty registration form.
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.responder.renderPage(r.Context(), w, "register.html", pageData{
		Form: map[string]string{"role": "pet_owner"},
	})
}

// Register processes a registration submission. Validation failures
// re-render the form with every issue at once and prior input preserved.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	input := application.RegisterInput{
		FullName:        r.PostFormValue("full_name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		Role:            r.PostFormValue("role"),
		TermsAccepted:   r.PostFormValue("terms") == "on",
	}

	_, err := h.service.Register(r.Context(), input)
	if err != nil {
		if vErr, ok := asValidationError(err); ok {
			h.responder.renderPage(r.Context(), w, "register.html", pageData{
				Errors:   vErr.FieldErrors,
				Messages: vErr.Messages,
				Form:     registerFormValues(r),
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Register").InfoContext(r.Context(), "account registered")
	h.responder.redirect(w, r, "/login")
}

// ShowLogin renders the empty login form.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.responder.renderPage(r.Context(), w, "login.html", pageData{
		Form: map[string]string{"role": "pet_owner"},
	})
}

// Login processes a login submission. Each failure class has its own
// message; all of them re-render the form with the email and role preserved.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	input := application.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}

	result, err := h.service.Login(r.Context(), input)
	if err != nil {
		message := loginFailureMessage(err)
		if message == "" {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.renderPage(r.Context(), w, "login.html", pageData{
			Messages: []string{message},
			Form: map[string]string{
				"email": r.PostFormValue("email"),
				"role":  r.PostFormValue("role"),
			},
		})
		return
	}

	setSessionCookie(w, result.Token, result.ExpiresAt)
	h.log(r.Context(), "Login", "user_id", result.Principal.UserID).InfoContext(r.Context(), "user logged in")
	h.responder.redirect(w, r, dashboardPath(result.Principal.Role))
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := extractTokenFromRequest(r)
	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			h.log(r.Context(), "Logout").ErrorContext(r.Context(), "logout failed", "error", err)
		}
	}
	clearSessionCookie(w)
	h.responder.redirect(w, r, "/login")
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, application.ErrAccountNotFound):
		return "No account found for that email."
	case errors.Is(err, application.ErrRoleMismatch):
		return "The selected role does not match this account."
	case errors.Is(err, application.ErrInvalidCredentials):
		return "Incorrect email or password."
	case errors.Is(err, application.ErrPendingApproval):
		return "Your account is awaiting administrator approval."
	}
	return ""
}

func registerFormValues(r *http.Request) map[string]string {
	return map[string]string{
		"full_name": r.PostFormValue("full_name"),
		"email":     r.PostFormValue("email"),
		"role":      r.PostFormValue("role"),
		"terms":     r.PostFormValue("terms"),
	}
}

func dashboardPath(role application.Role) string {
	switch role {
	case application.RoleAdmin:
		return "/dashboard"
	case application.RoleClinicStaff:
		return "/dashboard/staff"
	default:
		return "/dashboard/pet-owner"
	}
}

const sessionCookieName = "session_token"

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
	})
}

func extractTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/vetclinic/internal/application"
	"github.com/example/vetclinic/internal/http/views"
	"github.com/example/vetclinic/internal/persistence"
)

// AdminService captures the administrator operations the handler depends on.
type AdminService interface {
	ApproveStaff(ctx context.Context, principal application.Principal, userID string) error
	RejectStaff(ctx context.Context, principal application.Principal, userID string) error
	ChangeRole(ctx context.Context, principal application.Principal, userID string, role string) error
	ListUsers(ctx context.Context, principal application.Principal, filter application.UserListFilter) ([]persistence.User, error)
	ListPendingStaff(ctx context.Context, principal application.Principal) ([]persistence.User, error)
}

// AdminHandler serves the administrator pages.
type AdminHandler struct {
	service   AdminService
	responder responder
	logger    *slog.Logger
}

// NewAdminHandler wires the admin handler.
func NewAdminHandler(service AdminService, renderer *views.Renderer, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	return &AdminHandler{service: service, responder: newResponder(renderer, base), logger: base}
}

type adminDashboardData struct {
	PendingStaff []persistence.User
}

// Dashboard lists clinic staff accounts awaiting approval.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	pending, err := h.service.ListPendingStaff(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, "dashboard_admin.html", pageData{
		Principal: &principal,
		Data:      adminDashboardData{PendingStaff: pending},
	})
}

// ApproveStaff marks a pending staff account as approved.
func (h *AdminHandler) ApproveStaff(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	userID := chi.URLParam(r, "id")

	if err := h.service.ApproveStaff(r.Context(), principal, userID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard")
}

// RejectStaff deletes a pending staff account.
func (h *AdminHandler) RejectStaff(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	userID := chi.URLParam(r, "id")

	if err := h.service.RejectStaff(r.Context(), principal, userID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard")
}

type adminUsersData struct {
	Users          []persistence.User
	RoleFilter     string
	ApprovalFilter string
}

// ListUsers renders the filtered user listing.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	filter := application.UserListFilter{
		RoleFilter:     r.URL.Query().Get("role_filter"),
		ApprovalFilter: r.URL.Query().Get("approval_filter"),
	}

	users, err := h.service.ListUsers(r.Context(), principal, filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, "admin_users.html", pageData{
		Principal: &principal,
		Data: adminUsersData{
			Users:          users,
			RoleFilter:     filter.RoleFilter,
			ApprovalFilter: filter.ApprovalFilter,
		},
	})
}

// ChangeRole sets a user's role from the listing form.
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	userID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	if err := h.service.ChangeRole(r.Context(), principal, userID, r.PostFormValue("role")); err != nil {
		if _, ok := asValidationError(err); ok {
			h.responder.badRequest(w)
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/admin/users")
}

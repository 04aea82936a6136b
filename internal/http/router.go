package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/vetclinic/internal/application"
)

// RouterConfig carries the handlers and settings the router needs.
type RouterConfig struct {
	Auth           *AuthHandler
	Owner          *OwnerHandler
	Staff          *StaffHandler
	Admin          *AdminHandler
	Sessions       SessionValidator
	Logger         *slog.Logger
	LoginRateRPS   float64
	LoginRateBurst int
}

// NewRouter assembles the HTTP routing table. Credential submissions are
// rate limited per client IP; everything behind a session cookie goes
// through RequireSession and a role gate.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger))

	if cfg.LoginRateRPS <= 0 {
		cfg.LoginRateRPS = 1
	}
	if cfg.LoginRateBurst <= 0 {
		cfg.LoginRateBurst = 5
	}
	rateLimited := RateLimit(cfg.LoginRateRPS, cfg.LoginRateBurst)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/login", http.StatusSeeOther)
	})

	r.Get("/register", cfg.Auth.ShowRegister)
	r.With(rateLimited).Post("/register", cfg.Auth.Register)
	r.Get("/login", cfg.Auth.ShowLogin)
	r.With(rateLimited).Post("/login", cfg.Auth.Login)
	r.Get("/logout", cfg.Auth.Logout)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(cfg.Sessions, cfg.Logger))

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(application.Principal.IsPetOwner))

			r.Get("/dashboard/pet-owner", cfg.Owner.Dashboard)
			r.Get("/owner/pets/add", cfg.Owner.ShowAddPet)
			r.Post("/owner/pets/add", cfg.Owner.AddPet)
			r.Get("/owner/pets/{id}/edit", cfg.Owner.ShowEditPet)
			r.Post("/owner/pets/{id}/edit", cfg.Owner.EditPet)
			r.Post("/owner/pets/{id}/delete", cfg.Owner.DeletePet)
			r.Get("/owner/pets/{id}/history", cfg.Owner.History)
			r.Get("/owner/pets/{id}/prescriptions", cfg.Owner.Prescriptions)
			r.Get("/owner/invoices", cfg.Owner.Invoices)
			r.Get("/appointments/book", cfg.Owner.ShowBook)
			r.Post("/appointments/book", cfg.Owner.Book)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(application.Principal.IsStaff))

			r.Get("/dashboard/staff", cfg.Staff.Dashboard)
			r.Get("/staff/appointments/{id}/record", cfg.Staff.ShowRecordForm)
			r.Post("/staff/appointments/{id}/record", cfg.Staff.FileRecord)
			r.Get("/staff/appointments/{id}/reschedule", cfg.Staff.ShowRescheduleForm)
			r.Post("/staff/appointments/{id}/reschedule", cfg.Staff.Reschedule)
			r.Post("/staff/appointments/{id}/status", cfg.Staff.SetStatus)
			r.Get("/staff/appointments/{id}/prescription/new", cfg.Staff.ShowPrescriptionForm)
			r.Post("/staff/appointments/{id}/prescription/new", cfg.Staff.IssuePrescription)
			r.Get("/staff/appointments/{id}/invoice/new", cfg.Staff.ShowInvoiceForm)
			r.Post("/staff/appointments/{id}/invoice/new", cfg.Staff.IssueInvoice)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(application.Principal.IsAdmin))

			r.Get("/dashboard", cfg.Admin.Dashboard)
			r.Post("/admin/staff/{id}/approve", cfg.Admin.ApproveStaff)
			r.Post("/admin/staff/{id}/reject", cfg.Admin.RejectStaff)
			r.Get("/admin/users", cfg.Admin.ListUsers)
			r.Post("/admin/users/{id}/role", cfg.Admin.ChangeRole)
		})
	})

	return r
}

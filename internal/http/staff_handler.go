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

// StaffAppointmentService captures the appointment operations staff perform.
type StaffAppointmentService interface {
	Get(ctx context.Context, principal application.Principal, appointmentID string) (persistence.Appointment, error)
	Reschedule(ctx context.Context, principal application.Principal, appointmentID string, input application.RescheduleInput) (persistence.Appointment, error)
	SetStatus(ctx context.Context, principal application.Principal, appointmentID string, status string) (persistence.Appointment, error)
	ListAll(ctx context.Context, principal application.Principal, status string) ([]persistence.Appointment, error)
}

// VisitRecordService captures record and prescription filing.
type VisitRecordService interface {
	FileRecord(ctx context.Context, principal application.Principal, appointmentID string, input application.MedicalRecordInput) (persistence.MedicalRecord, error)
	IssuePrescription(ctx context.Context, principal application.Principal, appointmentID string, input application.PrescriptionInput) (persistence.Prescription, error)
}

// StaffInvoiceService captures invoice issuing.
type StaffInvoiceService interface {
	Issue(ctx context.Context, principal application.Principal, appointmentID string, input application.InvoiceInput) (persistence.Invoice, error)
}

// StaffHandler serves every clinic staff facing page.
type StaffHandler struct {
	appointments StaffAppointmentService
	records      VisitRecordService
	invoices     StaffInvoiceService
	responder    responder
	logger       *slog.Logger
}

// NewStaffHandler wires the staff handler.
func NewStaffHandler(appointments StaffAppointmentService, records VisitRecordService, invoices StaffInvoiceService, renderer *views.Renderer, logger *slog.Logger) *StaffHandler {
	base := defaultLogger(logger)
	return &StaffHandler{
		appointments: appointments,
		records:      records,
		invoices:     invoices,
		responder:    newResponder(renderer, base),
		logger:       base,
	}
}

type staffDashboardData struct {
	Appointments []persistence.Appointment
	StatusFilter string
}

// Dashboard lists every appointment, optionally narrowed by status.
func (h *StaffHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	status := r.URL.Query().Get("status")

	appointments, err := h.appointments.ListAll(r.Context(), principal, status)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, "dashboard_staff.html", pageData{
		Principal: &principal,
		Data:      staffDashboardData{Appointments: appointments, StatusFilter: status},
	})
}

type appointmentFormData struct {
	Appointment persistence.Appointment
}

// ShowRecordForm renders the visit record form for one appointment.
func (h *StaffHandler) ShowRecordForm(w http.ResponseWriter, r *http.Request) {
	h.showAppointmentForm(w, r, "record_form.html", nil)
}

// FileRecord processes the visit record form.
func (h *StaffHandler) FileRecord(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	appointmentID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	input := application.MedicalRecordInput{
		Weight:      r.PostFormValue("weight"),
		Temperature: r.PostFormValue("temperature"),
		Diagnosis:   r.PostFormValue("diagnosis"),
		Notes:       r.PostFormValue("notes"),
	}

	if _, err := h.records.FileRecord(r.Context(), principal, appointmentID, input); err != nil {
		if vErr, ok := asValidationError(err); ok {
			h.rerenderAppointmentForm(w, r, "record_form.html", appointmentID, vErr, map[string]string{
				"weight":      r.PostFormValue("weight"),
				"temperature": r.PostFormValue("temperature"),
				"diagnosis":   r.PostFormValue("diagnosis"),
				"notes":       r.PostFormValue("notes"),
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard/staff")
}

// ShowRescheduleForm renders the reschedule form prefilled with the current
// date and time.
func (h *StaffHandler) ShowRescheduleForm(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	appointmentID := chi.URLParam(r, "id")

	appointment, err := h.appointments.Get(r.Context(), principal, appointmentID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, "reschedule_form.html", pageData{
		Principal: &principal,
		Form: map[string]string{
			"date":   appointment.Date,
			"time":   appointment.Time,
			"reason": appointment.Reason,
		},
		Data: appointmentFormData{Appointment: appointment},
	})
}

// Reschedule processes the reschedule form.
func (h *StaffHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	appointmentID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	input := application.RescheduleInput{
		Date:   r.PostFormValue("date"),
		Time:   r.PostFormValue("time"),
		Reason: r.PostFormValue("reason"),
	}

	if _, err := h.appointments.Reschedule(r.Context(), principal, appointmentID, input); err != nil {
		if vErr, ok := asValidationError(err); ok {
			h.rerenderAppointmentForm(w, r, "reschedule_form.html", appointmentID, vErr, map[string]string{
				"date":   r.PostFormValue("date"),
				"time":   r.PostFormValue("time"),
				"reason": r.PostFormValue("reason"),
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard/staff")
}

// SetStatus applies a direct status update from the dashboard.
func (h *StaffHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	appointmentID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	if _, err := h.appointments.SetStatus(r.Context(), principal, appointmentID, r.PostFormValue("status")); err != nil {
		if _, ok := asValidationError(err); ok {
			h.responder.badRequest(w)
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard/staff")
}

// ShowPrescriptionForm renders the prescription form for one appointment.
func (h *StaffHandler) ShowPrescriptionForm(w http.ResponseWriter, r *http.Request) {
	h.showAppointmentForm(w, r, "prescription_form.html", nil)
}

// IssuePrescription processes the prescription form.
func (h *StaffHandler) IssuePrescription(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	appointmentID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	input := application.PrescriptionInput{
		DrugName:     r.PostFormValue("drug_name"),
		Dosage:       r.PostFormValue("dosage"),
		Frequency:    r.PostFormValue("frequency"),
		Duration:     r.PostFormValue("duration"),
		Instructions: r.PostFormValue("instructions"),
	}

	if _, err := h.records.IssuePrescription(r.Context(), principal, appointmentID, input); err != nil {
		if vErr, ok := asValidationError(err); ok {
			h.rerenderAppointmentForm(w, r, "prescription_form.html", appointmentID, vErr, map[string]string{
				"drug_name":    r.PostFormValue("drug_name"),
				"dosage":       r.PostFormValue("dosage"),
				"frequency":    r.PostFormValue("frequency"),
				"duration":     r.PostFormValue("duration"),
				"instructions": r.PostFormValue("instructions"),
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard/staff")
}

// ShowInvoiceForm renders the invoice form for one appointment.
func (h *StaffHandler) ShowInvoiceForm(w http.ResponseWriter, r *http.Request) {
	h.showAppointmentForm(w, r, "invoice_form.html", map[string]string{"status": "unpaid"})
}

// IssueInvoice processes the invoice form.
func (h *StaffHandler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	appointmentID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.responder.badRequest(w)
		return
	}

	input := application.InvoiceInput{
		TotalAmount: r.PostFormValue("total_amount"),
		Status:      r.PostFormValue("status"),
	}

	if _, err := h.invoices.Issue(r.Context(), principal, appointmentID, input); err != nil {
		if vErr, ok := asValidationError(err); ok {
			h.rerenderAppointmentForm(w, r, "invoice_form.html", appointmentID, vErr, map[string]string{
				"total_amount": r.PostFormValue("total_amount"),
				"status":       r.PostFormValue("status"),
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.redirect(w, r, "/dashboard/staff")
}

func (h *StaffHandler) showAppointmentForm(w http.ResponseWriter, r *http.Request, page string, form map[string]string) {
	principal, _ := PrincipalFromContext(r.Context())
	appointmentID := chi.URLParam(r, "id")

	appointment, err := h.appointments.Get(r.Context(), principal, appointmentID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, page, pageData{
		Principal: &principal,
		Form:      form,
		Data:      appointmentFormData{Appointment: appointment},
	})
}

func (h *StaffHandler) rerenderAppointmentForm(w http.ResponseWriter, r *http.Request, page, appointmentID string, vErr *application.ValidationError, form map[string]string) {
	principal, _ := PrincipalFromContext(r.Context())

	appointment, err := h.appointments.Get(r.Context(), principal, appointmentID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.renderPage(r.Context(), w, page, pageData{
		Principal: &principal,
		Errors:    vErr.FieldErrors,
		Messages:  vErr.Messages,
		Form:      form,
		Data:      appointmentFormData{Appointment: appointment},
	})
}

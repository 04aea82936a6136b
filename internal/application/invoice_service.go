package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

// InvoiceService issues invoices against appointments and serves owner
// billing views. Invoices never change after creation; there is no mark-paid
// action, and nothing stops several invoices being issued for one
// appointment.
type InvoiceService struct {
	invoices     persistence.InvoiceRepository
	appointments persistence.AppointmentRepository
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewInvoiceService wires dependencies for the invoice service.
func NewInvoiceService(invoices persistence.InvoiceRepository, appointments persistence.AppointmentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *InvoiceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &InvoiceService{
		invoices:     invoices,
		appointments: appointments,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *InvoiceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "InvoiceService", operation, attrs...)
}

// Issue validates the invoice form and inserts an invoice for the
// appointment's owner. When the invoice is created already paid, paid_at is
// stamped at that instant; otherwise it stays unset.
func (s *InvoiceService) Issue(ctx context.Context, principal Principal, appointmentID string, input InvoiceInput) (invoice persistence.Invoice, err error) {
	if s == nil {
		err = fmt.Errorf("InvoiceService is nil")
		return
	}
	if !principal.IsStaff() {
		err = ErrUnauthorized
		return
	}
	if s.invoices == nil || s.appointments == nil {
		err = fmt.Errorf("repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "Issue", "appointment_id", appointmentID, "staff_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "issuing invoice failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("invoice_id", invoice.ID).InfoContext(ctx, "invoice issued")
	}()

	appointment, getErr := s.appointments.GetAppointment(ctx, appointmentID)
	if getErr != nil {
		if errors.Is(getErr, persistence.ErrNotFound) {
			err = ErrNotFound
			return
		}
		err = getErr
		return
	}

	vErr := &ValidationError{}
	var total float64
	if trimmed := strings.TrimSpace(input.TotalAmount); trimmed == "" {
		vErr.add("total_amount", "Total amount is required.")
	} else {
		parsed, parseErr := strconv.ParseFloat(trimmed, 64)
		if parseErr != nil || parsed <= 0 {
			vErr.add("total_amount", "Total amount must be a positive number.")
		} else {
			total = parsed
		}
	}

	status := InvoiceStatus(strings.TrimSpace(input.Status))
	if !status.IsValid() {
		vErr.add("status", "Select a valid status.")
	}

	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	invoice = persistence.Invoice{
		ID:            s.idGenerator(),
		OwnerID:       appointment.OwnerID,
		AppointmentID: &appointment.ID,
		TotalAmount:   total,
		Status:        string(status),
		IssuedAt:      now,
	}
	if status == InvoicePaid {
		invoice.PaidAt = &now
	}

	if err = s.invoices.CreateInvoice(ctx, invoice); err != nil {
		return
	}

	return invoice, nil
}

// ListForOwner returns the acting owner's invoices.
func (s *InvoiceService) ListForOwner(ctx context.Context, principal Principal) ([]persistence.Invoice, error) {
	if s == nil {
		return nil, fmt.Errorf("InvoiceService is nil")
	}
	if !principal.IsPetOwner() {
		return nil, ErrUnauthorized
	}
	if s.invoices == nil {
		return nil, fmt.Errorf("invoice repository not configured")
	}
	return s.invoices.ListInvoicesByOwner(ctx, principal.UserID)
}

package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// AppointmentService orchestrates booking, rescheduling, and status updates.
// Dates and times live as sortable text so string comparison against the
// current date decides whether a booking is in the past.
type AppointmentService struct {
	appointments persistence.AppointmentRepository
	pets         persistence.PetRepository
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewAppointmentService wires dependencies for the appointment service.
func NewAppointmentService(appointments persistence.AppointmentRepository, pets persistence.PetRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AppointmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{
		appointments: appointments,
		pets:         pets,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *AppointmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AppointmentService", operation, attrs...)
}

// Book validates the booking form and inserts a pending appointment for the
// acting owner. The pet's name is copied onto the appointment row so the
// display value survives later pet edits and deletes. An owner with no
// registered pets cannot book at all.
func (s *AppointmentService) Book(ctx context.Context, principal Principal, input BookAppointmentInput) (appointment persistence.Appointment, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}
	if !principal.IsPetOwner() {
		err = ErrUnauthorized
		return
	}
	if s.appointments == nil || s.pets == nil {
		err = fmt.Errorf("repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "Book", "owner_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("appointment_id", appointment.ID).InfoContext(ctx, "appointment booked")
	}()

	ownedPets, listErr := s.pets.ListPetsByOwner(ctx, principal.UserID)
	if listErr != nil {
		err = listErr
		return
	}

	vErr := &ValidationError{}
	if len(ownedPets) == 0 {
		vErr.addMessage("Register a pet before booking an appointment.")
		err = vErr
		return
	}

	petID := strings.TrimSpace(input.PetID)
	var selected *persistence.Pet
	for i := range ownedPets {
		if ownedPets[i].ID == petID {
			selected = &ownedPets[i]
			break
		}
	}
	if selected == nil {
		vErr.add("pet_id", "Select one of your own pets.")
	}

	date := strings.TrimSpace(input.Date)
	timeOfDay := strings.TrimSpace(input.Time)
	s.validateSchedule(vErr, date, timeOfDay)

	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	appointment = persistence.Appointment{
		ID:        s.idGenerator(),
		OwnerID:   principal.UserID,
		PetID:     &selected.ID,
		PetName:   selected.Name,
		Date:      date,
		Time:      timeOfDay,
		Reason:    strings.TrimSpace(input.Reason),
		Status:    string(StatusPending),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = s.appointments.CreateAppointment(ctx, appointment); err != nil {
		return
	}

	return appointment, nil
}

// Reschedule overwrites an appointment's date, time, and reason, and forces
// its status to rescheduled regardless of the prior state. Any staff member
// may reschedule any appointment.
func (s *AppointmentService) Reschedule(ctx context.Context, principal Principal, appointmentID string, input RescheduleInput) (appointment persistence.Appointment, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}
	if !principal.IsStaff() {
		err = ErrUnauthorized
		return
	}
	if s.appointments == nil {
		err = fmt.Errorf("appointment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Reschedule", "appointment_id", appointmentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reschedule failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment rescheduled")
	}()

	existing, getErr := s.appointments.GetAppointment(ctx, appointmentID)
	if getErr != nil {
		if errors.Is(getErr, persistence.ErrNotFound) {
			err = ErrNotFound
			return
		}
		err = getErr
		return
	}

	date := strings.TrimSpace(input.Date)
	timeOfDay := strings.TrimSpace(input.Time)

	vErr := &ValidationError{}
	s.validateSchedule(vErr, date, timeOfDay)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing.Date = date
	existing.Time = timeOfDay
	existing.Reason = strings.TrimSpace(input.Reason)
	existing.Status = string(Advance(AppointmentStatus(existing.Status), EventReschedule, ""))
	existing.UpdatedAt = s.now()

	if err = s.appointments.UpdateAppointment(ctx, existing); err != nil {
		return
	}

	return existing, nil
}

// SetStatus applies a direct staff status update. The target may be any of
// the four states; there is no transition guard.
func (s *AppointmentService) SetStatus(ctx context.Context, principal Principal, appointmentID string, status string) (appointment persistence.Appointment, err error) {
	if s == nil {
		err = fmt.Errorf("AppointmentService is nil")
		return
	}
	if !principal.IsStaff() {
		err = ErrUnauthorized
		return
	}
	if s.appointments == nil {
		err = fmt.Errorf("appointment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetStatus", "appointment_id", appointmentID, "status", status)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "status update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment status updated")
	}()

	target := AppointmentStatus(strings.TrimSpace(status))
	if !target.IsValid() {
		vErr := &ValidationError{}
		vErr.add("status", "Select a valid status.")
		err = vErr
		return
	}

	existing, getErr := s.appointments.GetAppointment(ctx, appointmentID)
	if getErr != nil {
		if errors.Is(getErr, persistence.ErrNotFound) {
			err = ErrNotFound
			return
		}
		err = getErr
		return
	}

	existing.Status = string(Advance(AppointmentStatus(existing.Status), EventSetStatus, target))
	existing.UpdatedAt = s.now()

	if err = s.appointments.UpdateAppointment(ctx, existing); err != nil {
		return
	}

	return existing, nil
}

// Get loads a single appointment for staff flows.
func (s *AppointmentService) Get(ctx context.Context, principal Principal, appointmentID string) (persistence.Appointment, error) {
	if s == nil {
		return persistence.Appointment{}, fmt.Errorf("AppointmentService is nil")
	}
	if !principal.IsStaff() {
		return persistence.Appointment{}, ErrUnauthorized
	}
	if s.appointments == nil {
		return persistence.Appointment{}, fmt.Errorf("appointment repository not configured")
	}

	appointment, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Appointment{}, ErrNotFound
		}
		return persistence.Appointment{}, err
	}
	return appointment, nil
}

// ListForOwner returns the acting owner's appointments in chronological order.
func (s *AppointmentService) ListForOwner(ctx context.Context, principal Principal) ([]persistence.Appointment, error) {
	if s == nil {
		return nil, fmt.Errorf("AppointmentService is nil")
	}
	if !principal.IsPetOwner() {
		return nil, ErrUnauthorized
	}
	if s.appointments == nil {
		return nil, fmt.Errorf("appointment repository not configured")
	}
	return s.appointments.ListAppointments(ctx, persistence.AppointmentFilter{OwnerID: principal.UserID})
}

// ListAll returns every appointment for staff, optionally narrowed by status.
func (s *AppointmentService) ListAll(ctx context.Context, principal Principal, status string) ([]persistence.Appointment, error) {
	if s == nil {
		return nil, fmt.Errorf("AppointmentService is nil")
	}
	if !principal.IsStaff() {
		return nil, ErrUnauthorized
	}
	if s.appointments == nil {
		return nil, fmt.Errorf("appointment repository not configured")
	}

	status = strings.TrimSpace(status)
	if status != "" && !AppointmentStatus(status).IsValid() {
		status = ""
	}
	return s.appointments.ListAppointments(ctx, persistence.AppointmentFilter{Status: status})
}

// validateSchedule checks the shared date and time rules for booking and
// rescheduling: the date must parse and not precede the current date, the
// time must be present as HH:MM.
func (s *AppointmentService) validateSchedule(vErr *ValidationError, date, timeOfDay string) {
	if date == "" {
		vErr.add("date", "Date is required.")
	} else if _, parseErr := time.Parse(dateLayout, date); parseErr != nil {
		vErr.add("date", "Date must be in YYYY-MM-DD format.")
	} else if date < s.now().Format(dateLayout) {
		vErr.add("date", "Date cannot be in the past.")
	}

	if timeOfDay == "" {
		vErr.add("time", "Time is required.")
	} else if _, parseErr := time.Parse(timeLayout, timeOfDay); parseErr != nil {
		vErr.add("time", "Time must be in HH:MM format.")
	}
}

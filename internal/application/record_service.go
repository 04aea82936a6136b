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

// RecordService handles medical records and prescriptions. Both are filed by
// clinic staff against one appointment and are pure inserts with no update
// path. Owners read their pets' history through the same service.
type RecordService struct {
	records       persistence.MedicalRecordRepository
	prescriptions persistence.PrescriptionRepository
	appointments  persistence.AppointmentRepository
	pets          persistence.PetRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewRecordService wires dependencies for the record service.
func NewRecordService(records persistence.MedicalRecordRepository, prescriptions persistence.PrescriptionRepository, appointments persistence.AppointmentRepository, pets persistence.PetRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RecordService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RecordService{
		records:       records,
		prescriptions: prescriptions,
		appointments:  appointments,
		pets:          pets,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *RecordService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RecordService", operation, attrs...)
}

// FileRecord validates and inserts a medical record against an appointment.
// The appointment must carry a linked pet; legacy rows without one are
// rejected outright. Filing against a pending appointment advances it to
// confirmed; any other status is left unchanged.
func (s *RecordService) FileRecord(ctx context.Context, principal Principal, appointmentID string, input MedicalRecordInput) (record persistence.MedicalRecord, err error) {
	if s == nil {
		err = fmt.Errorf("RecordService is nil")
		return
	}
	if !principal.IsStaff() {
		err = ErrUnauthorized
		return
	}
	if s.records == nil || s.appointments == nil {
		err = fmt.Errorf("repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "FileRecord", "appointment_id", appointmentID, "staff_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "filing record failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("record_id", record.ID).InfoContext(ctx, "medical record filed")
	}()

	appointment, getErr := s.linkedAppointment(ctx, appointmentID)
	if getErr != nil {
		err = getErr
		return
	}

	vErr := &ValidationError{}
	diagnosis := strings.TrimSpace(input.Diagnosis)
	if diagnosis == "" {
		vErr.add("diagnosis", "Diagnosis is required.")
	}

	var weight *float64
	if trimmed := strings.TrimSpace(input.Weight); trimmed != "" {
		parsed, parseErr := strconv.ParseFloat(trimmed, 64)
		if parseErr != nil || parsed <= 0 {
			vErr.add("weight", "Weight must be a positive number.")
		} else {
			weight = &parsed
		}
	}

	var temperature *float64
	if trimmed := strings.TrimSpace(input.Temperature); trimmed != "" {
		parsed, parseErr := strconv.ParseFloat(trimmed, 64)
		if parseErr != nil {
			vErr.add("temperature", "Temperature must be a number.")
		} else {
			temperature = &parsed
		}
	}

	if vErr.HasErrors() {
		err = vErr
		return
	}

	record = persistence.MedicalRecord{
		ID:            s.idGenerator(),
		PetID:         *appointment.PetID,
		AppointmentID: &appointment.ID,
		StaffID:       principal.UserID,
		Weight:        weight,
		Temperature:   temperature,
		Diagnosis:     diagnosis,
		Notes:         strings.TrimSpace(input.Notes),
		CreatedAt:     s.now(),
	}

	if err = s.records.CreateMedicalRecord(ctx, record); err != nil {
		return
	}

	next := Advance(AppointmentStatus(appointment.Status), EventRecordFiled, "")
	if string(next) != appointment.Status {
		appointment.Status = string(next)
		appointment.UpdatedAt = s.now()
		if err = s.appointments.UpdateAppointment(ctx, appointment); err != nil {
			return
		}
	}

	return record, nil
}

// IssuePrescription validates and inserts a prescription against an
// appointment's linked pet.
func (s *RecordService) IssuePrescription(ctx context.Context, principal Principal, appointmentID string, input PrescriptionInput) (prescription persistence.Prescription, err error) {
	if s == nil {
		err = fmt.Errorf("RecordService is nil")
		return
	}
	if !principal.IsStaff() {
		err = ErrUnauthorized
		return
	}
	if s.prescriptions == nil || s.appointments == nil {
		err = fmt.Errorf("repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "IssuePrescription", "appointment_id", appointmentID, "staff_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "issuing prescription failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("prescription_id", prescription.ID).InfoContext(ctx, "prescription issued")
	}()

	appointment, getErr := s.linkedAppointment(ctx, appointmentID)
	if getErr != nil {
		err = getErr
		return
	}

	vErr := &ValidationError{}
	drugName := strings.TrimSpace(input.DrugName)
	dosage := strings.TrimSpace(input.Dosage)
	if drugName == "" {
		vErr.add("drug_name", "Drug name is required.")
	}
	if dosage == "" {
		vErr.add("dosage", "Dosage is required.")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	prescription = persistence.Prescription{
		ID:            s.idGenerator(),
		PetID:         *appointment.PetID,
		AppointmentID: &appointment.ID,
		StaffID:       principal.UserID,
		DrugName:      drugName,
		Dosage:        dosage,
		Frequency:     strings.TrimSpace(input.Frequency),
		Duration:      strings.TrimSpace(input.Duration),
		Instructions:  strings.TrimSpace(input.Instructions),
		CreatedAt:     s.now(),
	}

	if err = s.prescriptions.CreatePrescription(ctx, prescription); err != nil {
		return
	}

	return prescription, nil
}

// ListHistory returns a pet's medical records for its owner or for staff.
func (s *RecordService) ListHistory(ctx context.Context, principal Principal, petID string) ([]persistence.MedicalRecord, error) {
	if s == nil {
		return nil, fmt.Errorf("RecordService is nil")
	}
	if s.records == nil {
		return nil, fmt.Errorf("record repository not configured")
	}
	if err := s.authorizePetRead(ctx, principal, petID); err != nil {
		return nil, err
	}
	return s.records.ListMedicalRecordsByPet(ctx, petID)
}

// ListPrescriptions returns a pet's prescriptions for its owner or for staff.
func (s *RecordService) ListPrescriptions(ctx context.Context, principal Principal, petID string) ([]persistence.Prescription, error) {
	if s == nil {
		return nil, fmt.Errorf("RecordService is nil")
	}
	if s.prescriptions == nil {
		return nil, fmt.Errorf("prescription repository not configured")
	}
	if err := s.authorizePetRead(ctx, principal, petID); err != nil {
		return nil, err
	}
	return s.prescriptions.ListPrescriptionsByPet(ctx, petID)
}

// linkedAppointment loads an appointment and requires it to carry a pet link.
func (s *RecordService) linkedAppointment(ctx context.Context, appointmentID string) (persistence.Appointment, error) {
	appointment, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Appointment{}, ErrNotFound
		}
		return persistence.Appointment{}, err
	}
	if appointment.PetID == nil || *appointment.PetID == "" {
		return persistence.Appointment{}, ErrMissingPetLink
	}
	return appointment, nil
}

// authorizePetRead allows staff to read any pet and owners to read their own.
// A pet belonging to another owner reads as missing.
func (s *RecordService) authorizePetRead(ctx context.Context, principal Principal, petID string) error {
	if principal.IsStaff() {
		return nil
	}
	if !principal.IsPetOwner() {
		return ErrUnauthorized
	}
	if s.pets == nil {
		return fmt.Errorf("pet repository not configured")
	}

	pet, err := s.pets.GetPet(ctx, petID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if pet.OwnerID != principal.UserID {
		return ErrNotFound
	}
	return nil
}

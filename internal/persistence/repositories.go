package persistence

import (
	"context"
	"time"
)

// UserFilter narrows user listings. Empty Role matches all roles; nil
// Approved matches both approval states. Filters combine with logical AND.
type UserFilter struct {
	Role     string
	Approved *bool
}

// UserRepository exposes CRUD operations for user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// PetRepository exposes CRUD operations for pets.
type PetRepository interface {
	CreatePet(ctx context.Context, pet Pet) error
	UpdatePet(ctx context.Context, pet Pet) error
	GetPet(ctx context.Context, id string) (Pet, error)
	ListPetsByOwner(ctx context.Context, ownerID string) ([]Pet, error)
	DeletePet(ctx context.Context, id string) error
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	OwnerID string
	Status  string
}

// AppointmentRepository stores booked appointments.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment Appointment) error
	UpdateAppointment(ctx context.Context, appointment Appointment) error
	GetAppointment(ctx context.Context, id string) (Appointment, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
}

// MedicalRecordRepository stores visit records.
type MedicalRecordRepository interface {
	CreateMedicalRecord(ctx context.Context, record MedicalRecord) error
	ListMedicalRecordsByPet(ctx context.Context, petID string) ([]MedicalRecord, error)
}

// PrescriptionRepository stores issued prescriptions.
type PrescriptionRepository interface {
	CreatePrescription(ctx context.Context, prescription Prescription) error
	ListPrescriptionsByPet(ctx context.Context, petID string) ([]Prescription, error)
}

// InvoiceRepository stores issued invoices.
type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, invoice Invoice) error
	ListInvoicesByOwner(ctx context.Context, ownerID string) ([]Invoice, error)
}

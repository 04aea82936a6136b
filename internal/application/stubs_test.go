package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

type userRepositoryStub struct {
	users     map[string]persistence.User
	createErr error
}

func newUserRepositoryStub() *userRepositoryStub {
	return &userRepositoryStub{users: make(map[string]persistence.User)}
}

func (s *userRepositoryStub) CreateUser(_ context.Context, user persistence.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *userRepositoryStub) UpdateUser(_ context.Context, user persistence.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *userRepositoryStub) GetUser(_ context.Context, id string) (persistence.User, error) {
	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *userRepositoryStub) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *userRepositoryStub) ListUsers(_ context.Context, filter persistence.UserFilter) ([]persistence.User, error) {
	var users []persistence.User
	for _, user := range s.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Approved != nil && user.IsApproved != *filter.Approved {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *userRepositoryStub) DeleteUser(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type sessionRepositoryStub struct {
	sessions    map[string]persistence.Session
	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{sessions: make(map[string]persistence.Session)}
}

func (s *sessionRepositoryStub) CreateSession(_ context.Context, session persistence.Session) (persistence.Session, error) {
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionRepositoryStub) GetSession(_ context.Context, token string) (persistence.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *sessionRepositoryStub) RevokeSession(_ context.Context, token string, revokedAt time.Time) error {
	session, ok := s.sessions[token]
	if !ok {
		return persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[token] = session
	return nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.deleteCalls = append(s.deleteCalls, reference)
	for token, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

type petRepositoryStub struct {
	pets map[string]persistence.Pet
}

func newPetRepositoryStub() *petRepositoryStub {
	return &petRepositoryStub{pets: make(map[string]persistence.Pet)}
}

func (s *petRepositoryStub) CreatePet(_ context.Context, pet persistence.Pet) error {
	s.pets[pet.ID] = pet
	return nil
}

func (s *petRepositoryStub) UpdatePet(_ context.Context, pet persistence.Pet) error {
	if _, ok := s.pets[pet.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.pets[pet.ID] = pet
	return nil
}

func (s *petRepositoryStub) GetPet(_ context.Context, id string) (persistence.Pet, error) {
	pet, ok := s.pets[id]
	if !ok {
		return persistence.Pet{}, persistence.ErrNotFound
	}
	return pet, nil
}

func (s *petRepositoryStub) ListPetsByOwner(_ context.Context, ownerID string) ([]persistence.Pet, error) {
	var pets []persistence.Pet
	for _, pet := range s.pets {
		if pet.OwnerID == ownerID {
			pets = append(pets, pet)
		}
	}
	sort.Slice(pets, func(i, j int) bool { return pets[i].ID < pets[j].ID })
	return pets, nil
}

func (s *petRepositoryStub) DeletePet(_ context.Context, id string) error {
	if _, ok := s.pets[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.pets, id)
	return nil
}

type appointmentRepositoryStub struct {
	appointments map[string]persistence.Appointment
	updates      []persistence.Appointment
}

func newAppointmentRepositoryStub() *appointmentRepositoryStub {
	return &appointmentRepositoryStub{appointments: make(map[string]persistence.Appointment)}
}

func (s *appointmentRepositoryStub) CreateAppointment(_ context.Context, appointment persistence.Appointment) error {
	s.appointments[appointment.ID] = appointment
	return nil
}

func (s *appointmentRepositoryStub) UpdateAppointment(_ context.Context, appointment persistence.Appointment) error {
	if _, ok := s.appointments[appointment.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.appointments[appointment.ID] = appointment
	s.updates = append(s.updates, appointment)
	return nil
}

func (s *appointmentRepositoryStub) GetAppointment(_ context.Context, id string) (persistence.Appointment, error) {
	appointment, ok := s.appointments[id]
	if !ok {
		return persistence.Appointment{}, persistence.ErrNotFound
	}
	return appointment, nil
}

func (s *appointmentRepositoryStub) ListAppointments(_ context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	var appointments []persistence.Appointment
	for _, appointment := range s.appointments {
		if filter.OwnerID != "" && appointment.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && appointment.Status != filter.Status {
			continue
		}
		appointments = append(appointments, appointment)
	}
	sort.Slice(appointments, func(i, j int) bool {
		if appointments[i].Date != appointments[j].Date {
			return appointments[i].Date < appointments[j].Date
		}
		return appointments[i].Time < appointments[j].Time
	})
	return appointments, nil
}

type medicalRecordRepositoryStub struct {
	records []persistence.MedicalRecord
}

func (s *medicalRecordRepositoryStub) CreateMedicalRecord(_ context.Context, record persistence.MedicalRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *medicalRecordRepositoryStub) ListMedicalRecordsByPet(_ context.Context, petID string) ([]persistence.MedicalRecord, error) {
	var records []persistence.MedicalRecord
	for _, record := range s.records {
		if record.PetID == petID {
			records = append(records, record)
		}
	}
	return records, nil
}

type prescriptionRepositoryStub struct {
	prescriptions []persistence.Prescription
}

func (s *prescriptionRepositoryStub) CreatePrescription(_ context.Context, prescription persistence.Prescription) error {
	s.prescriptions = append(s.prescriptions, prescription)
	return nil
}

func (s *prescriptionRepositoryStub) ListPrescriptionsByPet(_ context.Context, petID string) ([]persistence.Prescription, error) {
	var prescriptions []persistence.Prescription
	for _, prescription := range s.prescriptions {
		if prescription.PetID == petID {
			prescriptions = append(prescriptions, prescription)
		}
	}
	return prescriptions, nil
}

type invoiceRepositoryStub struct {
	invoices []persistence.Invoice
}

func (s *invoiceRepositoryStub) CreateInvoice(_ context.Context, invoice persistence.Invoice) error {
	s.invoices = append(s.invoices, invoice)
	return nil
}

func (s *invoiceRepositoryStub) ListInvoicesByOwner(_ context.Context, ownerID string) ([]persistence.Invoice, error) {
	var invoices []persistence.Invoice
	for _, invoice := range s.invoices {
		if invoice.OwnerID == ownerID {
			invoices = append(invoices, invoice)
		}
	}
	return invoices, nil
}

func sequentialIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

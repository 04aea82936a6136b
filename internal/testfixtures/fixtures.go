package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

var (
	userCounter        uint64
	petCounter         uint64
	appointmentCounter uint64
)

var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// WithRole overrides the fixture role.
func WithRole(role string) UserOption {
	return func(u *persistence.User) { u.Role = role }
}

// WithApproved overrides the fixture approval flag.
func WithApproved(approved bool) UserOption {
	return func(u *persistence.User) { u.IsApproved = approved }
}

// WithEmail overrides the fixture email.
func WithEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

// NewUser returns a deterministic pet owner user with optional overrides.
func NewUser(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		ID:           id,
		FullName:     fmt.Sprintf("User %03d", idx),
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         "pet_owner",
		IsApproved:   true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// PetOption configures a generated pet fixture.
type PetOption func(*persistence.Pet)

// WithOwner overrides the fixture owner.
func WithOwner(ownerID string) PetOption {
	return func(p *persistence.Pet) { p.OwnerID = ownerID }
}

// NewPet returns a deterministic pet with optional overrides.
func NewPet(opts ...PetOption) persistence.Pet {
	idx := atomic.AddUint64(&petCounter, 1)
	id := fmt.Sprintf("pet-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	age := 3
	pet := persistence.Pet{
		ID:        id,
		OwnerID:   "user-001",
		Name:      fmt.Sprintf("Pet %03d", idx),
		Species:   "dog",
		Breed:     "mixed",
		Age:       &age,
		Sex:       "female",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&pet)
	}
	return pet
}

// AppointmentOption configures a generated appointment fixture.
type AppointmentOption func(*persistence.Appointment)

// ForPet links the fixture to a pet, snapshotting its name.
func ForPet(pet persistence.Pet) AppointmentOption {
	return func(a *persistence.Appointment) {
		petID := pet.ID
		a.PetID = &petID
		a.PetName = pet.Name
		a.OwnerID = pet.OwnerID
	}
}

// WithStatus overrides the fixture status.
func WithStatus(status string) AppointmentOption {
	return func(a *persistence.Appointment) { a.Status = status }
}

// WithoutPetLink clears the pet link to mimic legacy rows.
func WithoutPetLink() AppointmentOption {
	return func(a *persistence.Appointment) { a.PetID = nil }
}

// NewAppointment returns a deterministic pending appointment with optional
// overrides.
func NewAppointment(opts ...AppointmentOption) persistence.Appointment {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	id := fmt.Sprintf("appt-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	petID := "pet-001"
	appointment := persistence.Appointment{
		ID:        id,
		OwnerID:   "user-001",
		PetID:     &petID,
		PetName:   "Pet 001",
		Date:      "2025-07-01",
		Time:      "10:00",
		Reason:    "checkup",
		Status:    "pending",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&appointment)
	}
	return appointment
}

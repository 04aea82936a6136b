package application

import "time"

// Role identifies the account class of a user.
type Role string

const (
	RolePetOwner    Role = "pet_owner"
	RoleClinicStaff Role = "clinic_staff"
	RoleAdmin       Role = "admin"
)

// IsValid reports whether the role is one of the known account classes.
func (r Role) IsValid() bool {
	switch r {
	case RolePetOwner, RoleClinicStaff, RoleAdmin:
		return true
	}
	return false
}

// Registerable reports whether the role may be chosen on the public
// registration form. Administrators are never self-registered.
func (r Role) Registerable() bool {
	return r == RolePetOwner || r == RoleClinicStaff
}

// AppointmentStatus enumerates the lifecycle states of an appointment.
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusCancelled   AppointmentStatus = "cancelled"
)

// IsValid reports whether the status is one of the four known states.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRescheduled, StatusCancelled:
		return true
	}
	return false
}

// InvoiceStatus enumerates the billing states an invoice may carry.
type InvoiceStatus string

const (
	InvoiceUnpaid    InvoiceStatus = "unpaid"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// IsValid reports whether the status is one of the known billing states.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceUnpaid, InvoicePaid, InvoiceCancelled:
		return true
	}
	return false
}

// Principal is the authenticated identity attached to a request. It carries
// exactly the three fields every authorization check reads.
type Principal struct {
	UserID      string
	DisplayName string
	Role        Role
}

// IsStaff reports whether the principal may use clinic staff operations.
// Administrators pass staff gates as well.
func (p Principal) IsStaff() bool {
	return p.Role == RoleClinicStaff || p.Role == RoleAdmin
}

// IsAdmin reports whether the principal may use administrator operations.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsPetOwner reports whether the principal may use pet owner operations.
func (p Principal) IsPetOwner() bool {
	return p.Role == RolePetOwner
}

// RegisterInput carries the raw registration form fields.
type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	TermsAccepted   bool
}

// LoginInput carries the raw login form fields.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Principal Principal
	Token     string
	ExpiresAt time.Time
}

// PetInput carries the raw pet form fields. Age arrives as text and is
// parsed during validation.
type PetInput struct {
	Name    string
	Species string
	Breed   string
	Age     string
	Sex     string
	Notes   string
}

// BookAppointmentInput carries the raw booking form fields.
type BookAppointmentInput struct {
	PetID  string
	Date   string
	Time   string
	Reason string
}

// RescheduleInput carries the raw reschedule form fields.
type RescheduleInput struct {
	Date   string
	Time   string
	Reason string
}

// MedicalRecordInput carries the raw visit record form fields. Weight and
// temperature arrive as text and are parsed during validation.
type MedicalRecordInput struct {
	Weight      string
	Temperature string
	Diagnosis   string
	Notes       string
}

// PrescriptionInput carries the raw prescription form fields.
type PrescriptionInput struct {
	DrugName     string
	Dosage       string
	Frequency    string
	Duration     string
	Instructions string
}

// InvoiceInput carries the raw invoice form fields. TotalAmount arrives as
// text and is parsed during validation.
type InvoiceInput struct {
	TotalAmount string
	Status      string
}

// UserListFilter narrows the admin user listing. Empty strings mean "all".
// RoleFilter is a role name; ApprovalFilter is "approved" or "pending".
type UserListFilter struct {
	RoleFilter     string
	ApprovalFilter string
}

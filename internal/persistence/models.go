package persistence

import "time"

// User represents an account row: pet owner, clinic staff, or administrator.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         string
	IsApproved   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Pet represents a pet registered by a pet owner.
type Pet struct {
	ID        string
	OwnerID   string
	Name      string
	Species   string
	Breed     string
	Age       *int
	Sex       string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment represents a booked visit. Date and Time are stored as
// lexicographic-sortable text (YYYY-MM-DD and HH:MM) so string comparison
// orders chronologically. PetID is nullable for legacy rows; PetName is a
// snapshot taken at booking time that survives later pet edits and deletes.
type Appointment struct {
	ID        string
	OwnerID   string
	PetID     *string
	PetName   string
	Date      string
	Time      string
	Reason    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MedicalRecord represents a visit record filed by clinic staff.
type MedicalRecord struct {
	ID            string
	PetID         string
	AppointmentID *string
	StaffID       string
	Weight        *float64
	Temperature   *float64
	Diagnosis     string
	Notes         string
	CreatedAt     time.Time
}

// Prescription represents a drug prescription issued by clinic staff.
type Prescription struct {
	ID              string
	PetID           string
	AppointmentID   *string
	MedicalRecordID *string
	StaffID         string
	DrugName        string
	Dosage          string
	Frequency       string
	Duration        string
	Instructions    string
	CreatedAt       time.Time
}

// Invoice represents a billing entry issued against an appointment. PaidAt is
// set only when the invoice was created with status paid.
type Invoice struct {
	ID            string
	OwnerID       string
	AppointmentID *string
	TotalAmount   float64
	Status        string
	IssuedAt      time.Time
	PaidAt        *time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

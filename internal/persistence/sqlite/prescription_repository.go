package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

// PrescriptionRepository implements persistence.PrescriptionRepository using
// SQLite. Prescriptions are insert-only.
type PrescriptionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPrescriptionRepository creates a new SQLite prescription repository.
func NewPrescriptionRepository(pool *ConnectionPool) *PrescriptionRepository {
	return &PrescriptionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const prescriptionColumns = "id, pet_id, appointment_id, medical_record_id, staff_id, drug_name, dosage, frequency, duration, instructions, created_at"

// CreatePrescription inserts a new prescription.
func (r *PrescriptionRepository) CreatePrescription(ctx context.Context, prescription persistence.Prescription) error {
	if prescription.ID == "" || prescription.PetID == "" || prescription.StaffID == "" {
		return persistence.ErrConstraintViolation
	}
	if prescription.DrugName == "" || prescription.Dosage == "" {
		return persistence.ErrConstraintViolation
	}

	prescription.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO prescriptions (id, pet_id, appointment_id, medical_record_id, staff_id, drug_name, dosage, frequency, duration, instructions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		prescription.ID,
		prescription.PetID,
		nullString(prescription.AppointmentID),
		nullString(prescription.MedicalRecordID),
		prescription.StaffID,
		prescription.DrugName,
		prescription.Dosage,
		prescription.Frequency,
		prescription.Duration,
		prescription.Instructions,
		prescription.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return mapInsertError(err, r.mapper)
	}

	return nil
}

// ListPrescriptionsByPet returns a pet's prescriptions, most recent first.
func (r *PrescriptionRepository) ListPrescriptionsByPet(ctx context.Context, petID string) ([]persistence.Prescription, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT "+prescriptionColumns+" FROM prescriptions WHERE pet_id = ? ORDER BY created_at DESC, id ASC",
		petID,
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var prescriptions []persistence.Prescription
	for rows.Next() {
		var prescription persistence.Prescription
		var appointmentID, recordID sql.NullString
		var createdAtStr string

		err := rows.Scan(
			&prescription.ID,
			&prescription.PetID,
			&appointmentID,
			&recordID,
			&prescription.StaffID,
			&prescription.DrugName,
			&prescription.Dosage,
			&prescription.Frequency,
			&prescription.Duration,
			&prescription.Instructions,
			&createdAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		prescription.AppointmentID = stringPtr(appointmentID)
		prescription.MedicalRecordID = stringPtr(recordID)
		if prescription.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
			return nil, err
		}

		prescriptions = append(prescriptions, prescription)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return prescriptions, nil
}

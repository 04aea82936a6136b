package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

// MedicalRecordRepository implements persistence.MedicalRecordRepository
// using SQLite. Records are insert-only.
type MedicalRecordRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewMedicalRecordRepository creates a new SQLite medical record repository.
func NewMedicalRecordRepository(pool *ConnectionPool) *MedicalRecordRepository {
	return &MedicalRecordRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const recordColumns = "id, pet_id, appointment_id, staff_id, weight, temperature, diagnosis, notes, created_at"

// CreateMedicalRecord inserts a new visit record.
func (r *MedicalRecordRepository) CreateMedicalRecord(ctx context.Context, record persistence.MedicalRecord) error {
	if record.ID == "" || record.PetID == "" || record.StaffID == "" {
		return persistence.ErrConstraintViolation
	}
	if record.Diagnosis == "" {
		return persistence.ErrConstraintViolation
	}

	record.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO medical_records (id, pet_id, appointment_id, staff_id, weight, temperature, diagnosis, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		record.ID,
		record.PetID,
		nullString(record.AppointmentID),
		record.StaffID,
		nullFloat(record.Weight),
		nullFloat(record.Temperature),
		record.Diagnosis,
		record.Notes,
		record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return mapInsertError(err, r.mapper)
	}

	return nil
}

// ListMedicalRecordsByPet returns a pet's visit records, most recent first.
func (r *MedicalRecordRepository) ListMedicalRecordsByPet(ctx context.Context, petID string) ([]persistence.MedicalRecord, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT "+recordColumns+" FROM medical_records WHERE pet_id = ? ORDER BY created_at DESC, id ASC",
		petID,
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var records []persistence.MedicalRecord
	for rows.Next() {
		var record persistence.MedicalRecord
		var appointmentID sql.NullString
		var weight, temperature sql.NullFloat64
		var createdAtStr string

		err := rows.Scan(
			&record.ID,
			&record.PetID,
			&appointmentID,
			&record.StaffID,
			&weight,
			&temperature,
			&record.Diagnosis,
			&record.Notes,
			&createdAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		record.AppointmentID = stringPtr(appointmentID)
		record.Weight = floatPtr(weight)
		record.Temperature = floatPtr(temperature)
		if record.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return records, nil
}

// mapInsertError maps SQLite constraint failures on inserts to persistence
// sentinels. Shared by the insert-only repositories.
func mapInsertError(err error, mapper *ErrorMapper) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if containsAny(errStr, "UNIQUE constraint failed") {
		return persistence.ErrDuplicate
	}
	if containsAny(errStr, "FOREIGN KEY constraint failed") {
		return persistence.ErrForeignKeyViolation
	}
	if containsAny(errStr, "CHECK constraint failed") {
		return persistence.ErrConstraintViolation
	}

	return mapper.MapError(err)
}

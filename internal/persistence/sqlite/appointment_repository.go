package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

// AppointmentRepository implements persistence.AppointmentRepository using
// SQLite.
type AppointmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAppointmentRepository creates a new SQLite appointment repository.
func NewAppointmentRepository(pool *ConnectionPool) *AppointmentRepository {
	return &AppointmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const appointmentColumns = "id, owner_id, pet_id, pet_name, date, time, reason, status, created_at, updated_at"

// CreateAppointment inserts a new appointment row.
func (r *AppointmentRepository) CreateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if appointment.ID == "" || appointment.OwnerID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	query := `
		INSERT INTO appointments (id, owner_id, pet_id, pet_name, date, time, reason, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		appointment.ID,
		appointment.OwnerID,
		nullString(appointment.PetID),
		appointment.PetName,
		appointment.Date,
		appointment.Time,
		appointment.Reason,
		appointment.Status,
		appointment.CreatedAt.Format(time.RFC3339),
		appointment.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return r.mapAppointmentError(err)
	}

	return nil
}

// UpdateAppointment overwrites the mutable fields of an appointment: date,
// time, reason, and status. Owner, pet link, and pet name snapshot are
// immutable after booking.
func (r *AppointmentRepository) UpdateAppointment(ctx context.Context, appointment persistence.Appointment) error {
	if appointment.ID == "" {
		return persistence.ErrConstraintViolation
	}

	appointment.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE appointments
		SET date = ?, time = ?, reason = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		appointment.Date,
		appointment.Time,
		appointment.Reason,
		appointment.Status,
		appointment.UpdatedAt.Format(time.RFC3339),
		appointment.ID,
	)
	if err != nil {
		return r.mapAppointmentError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetAppointment retrieves an appointment by ID.
func (r *AppointmentRepository) GetAppointment(ctx context.Context, id string) (persistence.Appointment, error) {
	if id == "" {
		return persistence.Appointment{}, persistence.ErrNotFound
	}

	var appointment persistence.Appointment
	var petID sql.NullString
	var createdAtStr, updatedAtStr string

	err := r.helper.QueryRow(ctx, "SELECT "+appointmentColumns+" FROM appointments WHERE id = ?", id).Scan(
		&appointment.ID,
		&appointment.OwnerID,
		&petID,
		&appointment.PetName,
		&appointment.Date,
		&appointment.Time,
		&appointment.Reason,
		&appointment.Status,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Appointment{}, persistence.ErrNotFound
		}
		return persistence.Appointment{}, r.mapper.MapError(err)
	}

	appointment.PetID = stringPtr(petID)
	if appointment.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return persistence.Appointment{}, err
	}
	if appointment.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return persistence.Appointment{}, err
	}

	return appointment, nil
}

// ListAppointments returns appointments matching the filter in chronological
// order. The date and time columns sort lexicographically, which matches
// calendar order for their fixed formats.
func (r *AppointmentRepository) ListAppointments(ctx context.Context, filter persistence.AppointmentFilter) ([]persistence.Appointment, error) {
	query := "SELECT " + appointmentColumns + " FROM appointments"
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if filter.OwnerID != "" {
		clauses = append(clauses, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date ASC, time ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var appointments []persistence.Appointment
	for rows.Next() {
		var appointment persistence.Appointment
		var petID sql.NullString
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&appointment.ID,
			&appointment.OwnerID,
			&petID,
			&appointment.PetName,
			&appointment.Date,
			&appointment.Time,
			&appointment.Reason,
			&appointment.Status,
			&createdAtStr,
			&updatedAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		appointment.PetID = stringPtr(petID)
		if appointment.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
			return nil, err
		}
		if appointment.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
			return nil, err
		}

		appointments = append(appointments, appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return appointments, nil
}

// mapAppointmentError maps SQLite errors to persistence errors for
// appointment operations.
func (r *AppointmentRepository) mapAppointmentError(err error) error {
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

	return r.mapper.MapError(err)
}

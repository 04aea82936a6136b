package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/vetclinic/internal/persistence"
)

// PetRepository implements persistence.PetRepository using SQLite.
type PetRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPetRepository creates a new SQLite pet repository.
func NewPetRepository(pool *ConnectionPool) *PetRepository {
	return &PetRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const petColumns = "id, owner_id, name, species, breed, age, sex, notes, created_at, updated_at"

// CreatePet inserts a new pet into the database.
func (r *PetRepository) CreatePet(ctx context.Context, pet persistence.Pet) error {
	if pet.ID == "" || pet.OwnerID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	pet.CreatedAt = now
	pet.UpdatedAt = now

	query := `
		INSERT INTO pets (id, owner_id, name, species, breed, age, sex, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		pet.ID,
		pet.OwnerID,
		pet.Name,
		pet.Species,
		pet.Breed,
		nullInt(pet.Age),
		pet.Sex,
		pet.Notes,
		pet.CreatedAt.Format(time.RFC3339),
		pet.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return r.mapPetError(err)
	}

	return nil
}

// UpdatePet updates an existing pet. OwnerID is immutable.
func (r *PetRepository) UpdatePet(ctx context.Context, pet persistence.Pet) error {
	if pet.ID == "" {
		return persistence.ErrConstraintViolation
	}

	pet.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE pets
		SET name = ?, species = ?, breed = ?, age = ?, sex = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		pet.Name,
		pet.Species,
		pet.Breed,
		nullInt(pet.Age),
		pet.Sex,
		pet.Notes,
		pet.UpdatedAt.Format(time.RFC3339),
		pet.ID,
	)
	if err != nil {
		return r.mapPetError(err)
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

// GetPet retrieves a pet by ID.
func (r *PetRepository) GetPet(ctx context.Context, id string) (persistence.Pet, error) {
	if id == "" {
		return persistence.Pet{}, persistence.ErrNotFound
	}

	var pet persistence.Pet
	var age sql.NullInt64
	var createdAtStr, updatedAtStr string

	err := r.helper.QueryRow(ctx, "SELECT "+petColumns+" FROM pets WHERE id = ?", id).Scan(
		&pet.ID,
		&pet.OwnerID,
		&pet.Name,
		&pet.Species,
		&pet.Breed,
		&age,
		&pet.Sex,
		&pet.Notes,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Pet{}, persistence.ErrNotFound
		}
		return persistence.Pet{}, r.mapper.MapError(err)
	}

	pet.Age = intPtr(age)
	if pet.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return persistence.Pet{}, err
	}
	if pet.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return persistence.Pet{}, err
	}

	return pet, nil
}

// ListPetsByOwner returns the owner's pets ordered by creation timestamp.
func (r *PetRepository) ListPetsByOwner(ctx context.Context, ownerID string) ([]persistence.Pet, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT "+petColumns+" FROM pets WHERE owner_id = ? ORDER BY created_at ASC, id ASC",
		ownerID,
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var pets []persistence.Pet
	for rows.Next() {
		var pet persistence.Pet
		var age sql.NullInt64
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&pet.ID,
			&pet.OwnerID,
			&pet.Name,
			&pet.Species,
			&pet.Breed,
			&age,
			&pet.Sex,
			&pet.Notes,
			&createdAtStr,
			&updatedAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		pet.Age = intPtr(age)
		if pet.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
			return nil, err
		}
		if pet.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
			return nil, err
		}

		pets = append(pets, pet)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return pets, nil
}

// DeletePet removes a pet by ID. Appointment rows keep their pet_name
// snapshot; their pet_id reference is cleared by the schema.
func (r *PetRepository) DeletePet(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM pets WHERE id = ?", id)
	if err != nil {
		return r.mapPetError(err)
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

// mapPetError maps SQLite errors to persistence errors for pet operations.
func (r *PetRepository) mapPetError(err error) error {
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

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

// PetService orchestrates validation, authorization, and persistence for pets.
// Every operation is scoped to the acting pet owner: a pet belonging to
// another owner is indistinguishable from a missing one.
type PetService struct {
	pets        persistence.PetRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPetService wires dependencies for the pet service.
func NewPetService(pets persistence.PetRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PetService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PetService{pets: pets, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *PetService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PetService", operation, attrs...)
}

// AddPet validates input and persists a new pet for the acting owner.
func (s *PetService) AddPet(ctx context.Context, principal Principal, input PetInput) (pet persistence.Pet, err error) {
	if s == nil {
		err = fmt.Errorf("PetService is nil")
		return
	}
	if !principal.IsPetOwner() {
		err = ErrUnauthorized
		return
	}
	if s.pets == nil {
		err = fmt.Errorf("pet repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "AddPet", "owner_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "add pet failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("pet_id", pet.ID).InfoContext(ctx, "pet added")
	}()

	normalized, age, vErr := validatePetInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	pet = persistence.Pet{
		ID:        s.idGenerator(),
		OwnerID:   principal.UserID,
		Name:      normalized.Name,
		Species:   normalized.Species,
		Breed:     normalized.Breed,
		Age:       age,
		Sex:       normalized.Sex,
		Notes:     normalized.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = s.pets.CreatePet(ctx, pet); err != nil {
		return
	}

	return pet, nil
}

// UpdatePet validates input and updates an existing pet owned by the acting owner.
func (s *PetService) UpdatePet(ctx context.Context, principal Principal, petID string, input PetInput) (pet persistence.Pet, err error) {
	if s == nil {
		err = fmt.Errorf("PetService is nil")
		return
	}
	if !principal.IsPetOwner() {
		err = ErrUnauthorized
		return
	}
	if s.pets == nil {
		err = fmt.Errorf("pet repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdatePet", "owner_id", principal.UserID, "pet_id", petID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "update pet failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "pet updated")
	}()

	existing, getErr := s.getOwnedPet(ctx, principal, petID)
	if getErr != nil {
		err = getErr
		return
	}

	normalized, age, vErr := validatePetInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing.Name = normalized.Name
	existing.Species = normalized.Species
	existing.Breed = normalized.Breed
	existing.Age = age
	existing.Sex = normalized.Sex
	existing.Notes = normalized.Notes
	existing.UpdatedAt = s.now()

	if err = s.pets.UpdatePet(ctx, existing); err != nil {
		return
	}

	return existing, nil
}

// DeletePet removes a pet owned by the acting owner. Appointment rows keep
// their pet name snapshot; the pet link on them is cleared by the schema.
func (s *PetService) DeletePet(ctx context.Context, principal Principal, petID string) (err error) {
	if s == nil {
		return fmt.Errorf("PetService is nil")
	}
	if !principal.IsPetOwner() {
		return ErrUnauthorized
	}
	if s.pets == nil {
		return fmt.Errorf("pet repository not configured")
	}

	logger := s.loggerWith(ctx, "DeletePet", "owner_id", principal.UserID, "pet_id", petID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "delete pet failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "pet deleted")
	}()

	if _, err = s.getOwnedPet(ctx, principal, petID); err != nil {
		return err
	}

	if err = s.pets.DeletePet(ctx, petID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return err
	}

	return nil
}

// GetPet loads a single pet owned by the acting owner.
func (s *PetService) GetPet(ctx context.Context, principal Principal, petID string) (persistence.Pet, error) {
	if s == nil {
		return persistence.Pet{}, fmt.Errorf("PetService is nil")
	}
	if !principal.IsPetOwner() {
		return persistence.Pet{}, ErrUnauthorized
	}
	if s.pets == nil {
		return persistence.Pet{}, fmt.Errorf("pet repository not configured")
	}
	return s.getOwnedPet(ctx, principal, petID)
}

// ListPets returns the acting owner's pets.
func (s *PetService) ListPets(ctx context.Context, principal Principal) ([]persistence.Pet, error) {
	if s == nil {
		return nil, fmt.Errorf("PetService is nil")
	}
	if !principal.IsPetOwner() {
		return nil, ErrUnauthorized
	}
	if s.pets == nil {
		return nil, fmt.Errorf("pet repository not configured")
	}
	return s.pets.ListPetsByOwner(ctx, principal.UserID)
}

func (s *PetService) getOwnedPet(ctx context.Context, principal Principal, petID string) (persistence.Pet, error) {
	pet, err := s.pets.GetPet(ctx, petID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Pet{}, ErrNotFound
		}
		return persistence.Pet{}, err
	}
	if pet.OwnerID != principal.UserID {
		return persistence.Pet{}, ErrNotFound
	}
	return pet, nil
}

func validatePetInput(input PetInput) (PetInput, *int, *ValidationError) {
	normalized := PetInput{
		Name:    strings.TrimSpace(input.Name),
		Species: strings.TrimSpace(input.Species),
		Breed:   strings.TrimSpace(input.Breed),
		Age:     strings.TrimSpace(input.Age),
		Sex:     strings.TrimSpace(input.Sex),
		Notes:   strings.TrimSpace(input.Notes),
	}

	vErr := &ValidationError{}
	if normalized.Name == "" {
		vErr.add("name", "Name is required.")
	}
	if normalized.Species == "" {
		vErr.add("species", "Species is required.")
	}

	var age *int
	if normalized.Age != "" {
		parsed, err := strconv.Atoi(normalized.Age)
		if err != nil || parsed < 0 {
			vErr.add("age", "Age must be a non-negative whole number.")
		} else {
			age = &parsed
		}
	}

	return normalized, age, vErr
}

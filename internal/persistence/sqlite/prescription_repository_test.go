package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/vetclinic/internal/persistence"
	"github.com/example/vetclinic/internal/testfixtures"
)

func TestPrescriptionRepository(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a prescription", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		_, pet := createOwnedPet(t, h)
		staff := createStaff(t, h)

		prescription := persistence.Prescription{
			ID:           "rx-1",
			PetID:        pet.ID,
			StaffID:      staff.ID,
			DrugName:     "amoxicillin",
			Dosage:       "50mg",
			Frequency:    "twice daily",
			Duration:     "7 days",
			Instructions: "with food",
		}
		if err := h.Prescriptions.CreatePrescription(ctx, prescription); err != nil {
			t.Fatalf("CreatePrescription failed: %v", err)
		}

		listed, err := h.Prescriptions.ListPrescriptionsByPet(ctx, pet.ID)
		if err != nil {
			t.Fatalf("ListPrescriptionsByPet failed: %v", err)
		}
		if len(listed) != 1 {
			t.Fatalf("expected one prescription, got %d", len(listed))
		}
		loaded := listed[0]
		if loaded.DrugName != "amoxicillin" || loaded.Dosage != "50mg" || loaded.Instructions != "with food" {
			t.Fatalf("unexpected prescription %+v", loaded)
		}
		if loaded.CreatedAt.IsZero() {
			t.Fatal("expected a creation timestamp")
		}
	})

	t.Run("drug name and dosage are required", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		_, pet := createOwnedPet(t, h)
		staff := createStaff(t, h)

		prescription := persistence.Prescription{ID: "rx-1", PetID: pet.ID, StaffID: staff.ID}
		if err := h.Prescriptions.CreatePrescription(ctx, prescription); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("listing is scoped to one pet", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		_, pet := createOwnedPet(t, h)
		_, otherPet := createOwnedPet(t, h)
		staff := createStaff(t, h)

		for i, petID := range []string{pet.ID, otherPet.ID} {
			prescription := persistence.Prescription{
				ID: "rx-" + string(rune('a'+i)), PetID: petID, StaffID: staff.ID,
				DrugName: "meloxicam", Dosage: "1mg",
			}
			if err := h.Prescriptions.CreatePrescription(ctx, prescription); err != nil {
				t.Fatalf("CreatePrescription failed: %v", err)
			}
		}

		listed, err := h.Prescriptions.ListPrescriptionsByPet(ctx, pet.ID)
		if err != nil {
			t.Fatalf("ListPrescriptionsByPet failed: %v", err)
		}
		if len(listed) != 1 || listed[0].PetID != pet.ID {
			t.Fatalf("expected only the pet's prescription, got %+v", listed)
		}
	})
}

package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/vetclinic/internal/persistence"
	"github.com/example/vetclinic/internal/testfixtures"
)

func createStaff(t *testing.T, h *testfixtures.SQLiteHarness) persistence.User {
	t.Helper()

	staff := testfixtures.NewUser(testfixtures.WithRole("clinic_staff"), testfixtures.WithApproved(true))
	if err := h.Users.CreateUser(context.Background(), staff); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return staff
}

func TestMedicalRecordRepository(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a record with optional measurements", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		_, pet := createOwnedPet(t, h)
		staff := createStaff(t, h)

		weight := 12.5
		temperature := 38.6
		record := persistence.MedicalRecord{
			ID:          "record-1",
			PetID:       pet.ID,
			StaffID:     staff.ID,
			Weight:      &weight,
			Temperature: &temperature,
			Diagnosis:   "otitis externa",
			Notes:       "left ear",
		}
		if err := h.Records.CreateMedicalRecord(ctx, record); err != nil {
			t.Fatalf("CreateMedicalRecord failed: %v", err)
		}

		listed, err := h.Records.ListMedicalRecordsByPet(ctx, pet.ID)
		if err != nil {
			t.Fatalf("ListMedicalRecordsByPet failed: %v", err)
		}
		if len(listed) != 1 {
			t.Fatalf("expected one record, got %d", len(listed))
		}
		loaded := listed[0]
		if loaded.Weight == nil || *loaded.Weight != weight {
			t.Fatalf("expected weight %v, got %v", weight, loaded.Weight)
		}
		if loaded.Temperature == nil || *loaded.Temperature != temperature {
			t.Fatalf("expected temperature %v, got %v", temperature, loaded.Temperature)
		}
		if loaded.Diagnosis != "otitis externa" {
			t.Fatalf("unexpected diagnosis %q", loaded.Diagnosis)
		}
	})

	t.Run("nil measurements stay nil", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		_, pet := createOwnedPet(t, h)
		staff := createStaff(t, h)

		record := persistence.MedicalRecord{ID: "record-1", PetID: pet.ID, StaffID: staff.ID, Diagnosis: "healthy"}
		if err := h.Records.CreateMedicalRecord(ctx, record); err != nil {
			t.Fatalf("CreateMedicalRecord failed: %v", err)
		}

		listed, err := h.Records.ListMedicalRecordsByPet(ctx, pet.ID)
		if err != nil {
			t.Fatalf("ListMedicalRecordsByPet failed: %v", err)
		}
		if listed[0].Weight != nil || listed[0].Temperature != nil {
			t.Fatalf("expected nil measurements, got %+v", listed[0])
		}
	})

	t.Run("required fields are enforced before the insert", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		record := persistence.MedicalRecord{ID: "record-1"}
		if err := h.Records.CreateMedicalRecord(context.Background(), record); !errors.Is(err, persistence.ErrConstraintViolation) {
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
			record := persistence.MedicalRecord{
				ID: "record-" + string(rune('a'+i)), PetID: petID, StaffID: staff.ID, Diagnosis: "checkup",
			}
			if err := h.Records.CreateMedicalRecord(ctx, record); err != nil {
				t.Fatalf("CreateMedicalRecord failed: %v", err)
			}
		}

		listed, err := h.Records.ListMedicalRecordsByPet(ctx, pet.ID)
		if err != nil {
			t.Fatalf("ListMedicalRecordsByPet failed: %v", err)
		}
		if len(listed) != 1 || listed[0].PetID != pet.ID {
			t.Fatalf("expected only the pet's record, got %+v", listed)
		}
	})
}

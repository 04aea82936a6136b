package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/vetclinic/internal/persistence"
	"github.com/example/vetclinic/internal/testfixtures"
)

func createOwnedPet(t *testing.T, h *testfixtures.SQLiteHarness) (persistence.User, persistence.Pet) {
	t.Helper()

	owner := createOwner(t, h)
	pet := testfixtures.NewPet(testfixtures.WithOwner(owner.ID))
	if err := h.Pets.CreatePet(context.Background(), pet); err != nil {
		t.Fatalf("CreatePet failed: %v", err)
	}
	return owner, pet
}

func TestAppointmentRepository(t *testing.T) {
	t.Parallel()

	t.Run("round-trips an appointment with its pet link", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		_, pet := createOwnedPet(t, h)
		appointment := testfixtures.NewAppointment(testfixtures.ForPet(pet))

		if err := h.Appointments.CreateAppointment(ctx, appointment); err != nil {
			t.Fatalf("CreateAppointment failed: %v", err)
		}

		loaded, err := h.Appointments.GetAppointment(ctx, appointment.ID)
		if err != nil {
			t.Fatalf("GetAppointment failed: %v", err)
		}
		if loaded.PetID == nil || *loaded.PetID != pet.ID {
			t.Fatalf("expected pet link %s, got %v", pet.ID, loaded.PetID)
		}
		if loaded.PetName != pet.Name {
			t.Fatalf("expected pet name snapshot %q, got %q", pet.Name, loaded.PetName)
		}
		if loaded.Status != "pending" {
			t.Fatalf("expected pending, got %s", loaded.Status)
		}
	})

	t.Run("stores a legacy row without a pet link", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		owner := createOwner(t, h)
		appointment := testfixtures.NewAppointment(testfixtures.WithoutPetLink())
		appointment.OwnerID = owner.ID

		if err := h.Appointments.CreateAppointment(ctx, appointment); err != nil {
			t.Fatalf("CreateAppointment failed: %v", err)
		}
		loaded, err := h.Appointments.GetAppointment(ctx, appointment.ID)
		if err != nil {
			t.Fatalf("GetAppointment failed: %v", err)
		}
		if loaded.PetID != nil {
			t.Fatalf("expected nil pet link, got %v", loaded.PetID)
		}
		if loaded.PetName != appointment.PetName {
			t.Fatalf("expected the snapshot to survive, got %q", loaded.PetName)
		}
	})

	t.Run("an unknown status is rejected by the schema", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		_, pet := createOwnedPet(t, h)
		appointment := testfixtures.NewAppointment(testfixtures.ForPet(pet), testfixtures.WithStatus("archived"))

		if err := h.Appointments.CreateAppointment(ctx, appointment); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("lists chronologically and filters by owner and status", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		_, pet := createOwnedPet(t, h)
		_, otherPet := createOwnedPet(t, h)

		later := testfixtures.NewAppointment(testfixtures.ForPet(pet))
		later.Date, later.Time = "2025-07-02", "09:00"
		earlier := testfixtures.NewAppointment(testfixtures.ForPet(pet), testfixtures.WithStatus("confirmed"))
		earlier.Date, earlier.Time = "2025-07-01", "15:00"
		sameDay := testfixtures.NewAppointment(testfixtures.ForPet(pet))
		sameDay.Date, sameDay.Time = "2025-07-01", "09:30"
		foreign := testfixtures.NewAppointment(testfixtures.ForPet(otherPet))
		foreign.Date, foreign.Time = "2025-06-30", "08:00"

		for _, a := range []persistence.Appointment{later, earlier, sameDay, foreign} {
			if err := h.Appointments.CreateAppointment(ctx, a); err != nil {
				t.Fatalf("CreateAppointment failed: %v", err)
			}
		}

		all, err := h.Appointments.ListAppointments(ctx, persistence.AppointmentFilter{})
		if err != nil {
			t.Fatalf("ListAppointments failed: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("expected four appointments, got %d", len(all))
		}
		order := []string{foreign.ID, sameDay.ID, earlier.ID, later.ID}
		for i, want := range order {
			if all[i].ID != want {
				t.Fatalf("position %d: expected %s, got %s", i, want, all[i].ID)
			}
		}

		mine, err := h.Appointments.ListAppointments(ctx, persistence.AppointmentFilter{OwnerID: pet.OwnerID})
		if err != nil {
			t.Fatalf("ListAppointments failed: %v", err)
		}
		if len(mine) != 3 {
			t.Fatalf("expected three owned appointments, got %d", len(mine))
		}

		confirmed, err := h.Appointments.ListAppointments(ctx, persistence.AppointmentFilter{OwnerID: pet.OwnerID, Status: "confirmed"})
		if err != nil {
			t.Fatalf("ListAppointments failed: %v", err)
		}
		if len(confirmed) != 1 || confirmed[0].ID != earlier.ID {
			t.Fatalf("expected only the confirmed appointment, got %+v", confirmed)
		}
	})

	t.Run("updates schedule and status", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		_, pet := createOwnedPet(t, h)
		appointment := testfixtures.NewAppointment(testfixtures.ForPet(pet))
		if err := h.Appointments.CreateAppointment(ctx, appointment); err != nil {
			t.Fatalf("CreateAppointment failed: %v", err)
		}

		appointment.Date, appointment.Time = "2025-08-01", "11:00"
		appointment.Status = "rescheduled"
		if err := h.Appointments.UpdateAppointment(ctx, appointment); err != nil {
			t.Fatalf("UpdateAppointment failed: %v", err)
		}

		loaded, err := h.Appointments.GetAppointment(ctx, appointment.ID)
		if err != nil {
			t.Fatalf("GetAppointment failed: %v", err)
		}
		if loaded.Date != "2025-08-01" || loaded.Time != "11:00" || loaded.Status != "rescheduled" {
			t.Fatalf("unexpected appointment after update %+v", loaded)
		}
	})
}

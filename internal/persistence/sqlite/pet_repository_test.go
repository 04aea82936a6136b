package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/vetclinic/internal/persistence"
	"github.com/example/vetclinic/internal/testfixtures"
)

func createOwner(t *testing.T, h *testfixtures.SQLiteHarness) persistence.User {
	t.Helper()

	owner := testfixtures.NewUser()
	if err := h.Users.CreateUser(context.Background(), owner); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return owner
}

func TestPetRepository(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a pet including the optional age", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		owner := createOwner(t, h)
		pet := testfixtures.NewPet(testfixtures.WithOwner(owner.ID))

		if err := h.Pets.CreatePet(ctx, pet); err != nil {
			t.Fatalf("CreatePet failed: %v", err)
		}

		loaded, err := h.Pets.GetPet(ctx, pet.ID)
		if err != nil {
			t.Fatalf("GetPet failed: %v", err)
		}
		if loaded.Name != pet.Name || loaded.Species != pet.Species {
			t.Fatalf("unexpected pet %+v", loaded)
		}
		if loaded.Age == nil || *loaded.Age != *pet.Age {
			t.Fatalf("expected age %v, got %v", pet.Age, loaded.Age)
		}
	})

	t.Run("a nil age stays nil", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		owner := createOwner(t, h)
		pet := testfixtures.NewPet(testfixtures.WithOwner(owner.ID))
		pet.Age = nil

		if err := h.Pets.CreatePet(ctx, pet); err != nil {
			t.Fatalf("CreatePet failed: %v", err)
		}
		loaded, err := h.Pets.GetPet(ctx, pet.ID)
		if err != nil {
			t.Fatalf("GetPet failed: %v", err)
		}
		if loaded.Age != nil {
			t.Fatalf("expected nil age, got %v", loaded.Age)
		}
	})

	t.Run("lists pets for one owner in creation order", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		owner := createOwner(t, h)
		other := createOwner(t, h)

		first := testfixtures.NewPet(testfixtures.WithOwner(owner.ID))
		second := testfixtures.NewPet(testfixtures.WithOwner(owner.ID))
		foreign := testfixtures.NewPet(testfixtures.WithOwner(other.ID))
		for _, p := range []persistence.Pet{second, foreign, first} {
			if err := h.Pets.CreatePet(ctx, p); err != nil {
				t.Fatalf("CreatePet failed: %v", err)
			}
		}

		listed, err := h.Pets.ListPetsByOwner(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListPetsByOwner failed: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("expected two pets, got %d", len(listed))
		}
		if listed[0].ID != first.ID || listed[1].ID != second.ID {
			t.Fatalf("expected creation order, got %s then %s", listed[0].ID, listed[1].ID)
		}
	})

	t.Run("updates and deletes", func(t *testing.T) {
		t.Parallel()

		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		owner := createOwner(t, h)
		pet := testfixtures.NewPet(testfixtures.WithOwner(owner.ID))
		if err := h.Pets.CreatePet(ctx, pet); err != nil {
			t.Fatalf("CreatePet failed: %v", err)
		}

		pet.Name = "Renamed"
		pet.Notes = "prefers the side entrance"
		if err := h.Pets.UpdatePet(ctx, pet); err != nil {
			t.Fatalf("UpdatePet failed: %v", err)
		}
		loaded, err := h.Pets.GetPet(ctx, pet.ID)
		if err != nil {
			t.Fatalf("GetPet failed: %v", err)
		}
		if loaded.Name != "Renamed" || loaded.Notes != "prefers the side entrance" {
			t.Fatalf("unexpected pet after update %+v", loaded)
		}

		if err := h.Pets.DeletePet(ctx, pet.ID); err != nil {
			t.Fatalf("DeletePet failed: %v", err)
		}
		if _, err := h.Pets.GetPet(ctx, pet.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

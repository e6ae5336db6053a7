package escrow

import (
	"errors"
	"testing"

	"escrowd/storage"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	return NewRegistry(db)
}

func dummyEscrow() *Escrow {
	return &Escrow{
		Arbiter:     "arb",
		Recipient:   "recip",
		Source:      "source",
		Title:       "some_escrow",
		Description: "some escrow desc",
	}
}

func TestRegistryEmptyList(t *testing.T) {
	registry := newTestRegistry(t)
	ids, err := registry.ListIDs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}

func TestRegistryListAscending(t *testing.T) {
	registry := newTestRegistry(t)
	for _, id := range []string{"lazy", "assign", "zen"} {
		if err := registry.Put(id, dummyEscrow()); err != nil {
			t.Fatalf("put %q: %v", id, err)
		}
	}

	ids, err := registry.ListIDs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"assign", "lazy", "zen"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestRegistryCreateRefusesOccupiedID(t *testing.T) {
	registry := newTestRegistry(t)
	if err := registry.Create("foobar", dummyEscrow()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := registry.Create("foobar", dummyEscrow()); !errors.Is(err, ErrAlreadyInUse) {
		t.Fatalf("got %v, want ErrAlreadyInUse", err)
	}
}

func TestRegistryDeleteFreesID(t *testing.T) {
	registry := newTestRegistry(t)
	if err := registry.Create("foobar", dummyEscrow()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := registry.Delete("foobar"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := registry.Get("foobar"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := registry.Create("foobar", dummyEscrow()); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}

func TestRegistryRoundTripsRecord(t *testing.T) {
	registry := newTestRegistry(t)

	esc := dummyEscrow()
	esc.TokenWhitelist = []string{"foo_token"}
	esc.Milestones = []*Milestone{{
		ID:      "1",
		Title:   "m1",
		Amount:  nativeBalance(coin(100, "atom")),
		EndTime: intPtr(5_000),
	}}
	esc.updateDerived()

	if err := registry.Put("foobar", esc); err != nil {
		t.Fatalf("put: %v", err)
	}
	loaded, err := registry.Get("foobar")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !loaded.Balance.Equal(esc.Balance) {
		t.Fatalf("balance %+v, want %+v", loaded.Balance, esc.Balance)
	}
	if loaded.EndTime == nil || *loaded.EndTime != 5_000 {
		t.Fatalf("end time %v, want 5000", loaded.EndTime)
	}
	if loaded.EndHeight != nil {
		t.Fatalf("end height %v, want nil", loaded.EndHeight)
	}
	if len(loaded.Milestones) != 1 || loaded.Milestones[0].ID != "1" || loaded.Milestones[0].Completed {
		t.Fatalf("milestones %+v", loaded.Milestones)
	}
}

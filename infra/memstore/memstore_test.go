package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
)

func TestOrderCreateSingleCreatedInvariant(t *testing.T) {
	s := New().Orders
	ctx := context.Background()
	first := model.Order{ID: "o1", Status: model.OrderCreated, CreatedAt: time.Now()}
	if err := s.Create(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := s.Create(ctx, model.Order{ID: "o2", Status: model.OrderCreated})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := s.FindByID(ctx, "o2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("conflicting order must not be persisted")
	}
}

func TestOrderCreateConcurrentRace(t *testing.T) {
	s := New().Orders
	ctx := context.Background()
	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Create(ctx, model.Order{ID: fmt.Sprintf("o%d", i), Status: model.OrderCreated})
		}(i)
	}
	wg.Wait()
	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Fatalf("want exactly 1 success and %d conflicts, got %d/%d", n-1, ok, conflicts)
	}
}

func TestOrderTransitionStatusIsConditional(t *testing.T) {
	s := New().Orders
	ctx := context.Background()
	if err := s.Create(ctx, model.Order{ID: "o1", Status: model.OrderCreated}); err != nil {
		t.Fatalf("create: %v", err)
	}
	changed, err := s.TransitionStatus(ctx, "o1", model.OrderCreated, model.OrderInProgress)
	if err != nil || !changed {
		t.Fatalf("first transition: changed=%v err=%v", changed, err)
	}
	// Redelivered notification: transition from CREATED is a no-op now.
	changed, err = s.TransitionStatus(ctx, "o1", model.OrderCreated, model.OrderInProgress)
	if err != nil || changed {
		t.Fatalf("second transition must be a no-op: changed=%v err=%v", changed, err)
	}
	if _, err := s.TransitionStatus(ctx, "nope", model.OrderCreated, model.OrderInProgress); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecipeSetAvailable(t *testing.T) {
	s := New().Recipes
	ctx := context.Background()
	for _, id := range []string{"r1", "r2", "r3"} {
		if err := s.Create(ctx, model.Recipe{ID: id, Name: id, IsAvailable: true}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := s.SetAvailable(ctx, []string{"r2"}); err != nil {
		t.Fatalf("set available: %v", err)
	}
	all, err := s.Find(ctx, store.RecipeFilter{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	for _, r := range all {
		want := r.ID == "r2"
		if r.IsAvailable != want {
			t.Errorf("recipe %s availability = %v, want %v", r.ID, r.IsAvailable, want)
		}
	}
	avail := true
	onlyAvail, err := s.Find(ctx, store.RecipeFilter{Available: &avail})
	if err != nil {
		t.Fatalf("filtered find: %v", err)
	}
	if len(onlyAvail) != 1 || onlyAvail[0].ID != "r2" {
		t.Fatalf("filter returned %v", onlyAvail)
	}
}

func TestSlotNumberUniqueness(t *testing.T) {
	s := New().Slots
	ctx := context.Background()
	if err := s.Create(ctx, model.DispenserSlot{ID: "s1", Slot: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, model.DispenserSlot{ID: "s2", Slot: 1}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate slot number, got %v", err)
	}
	if err := s.Create(ctx, model.DispenserSlot{ID: "s2", Slot: 2}); err != nil {
		t.Fatalf("create second slot: %v", err)
	}
	if err := s.Update(ctx, model.DispenserSlot{ID: "s2", Slot: 1}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict on update stealing slot number, got %v", err)
	}
}

func TestOrderFindReturnsOldestFirst(t *testing.T) {
	s := New().Orders
	ctx := context.Background()
	base := time.Now()
	// Insert out of chronological order; Find must sort by creation time.
	for _, o := range []model.Order{
		{ID: "o2", Status: model.OrderDone, CreatedAt: base.Add(time.Minute)},
		{ID: "o3", Status: model.OrderFailed, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "o1", Status: model.OrderDone, CreatedAt: base},
	} {
		if err := s.Create(ctx, o); err != nil {
			t.Fatalf("create %s: %v", o.ID, err)
		}
	}
	all, err := s.Find(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(all) != 3 || all[0].ID != "o1" || all[1].ID != "o2" || all[2].ID != "o3" {
		t.Fatalf("orders not sorted oldest first: %+v", all)
	}
}

func TestSettingGetBeforePut(t *testing.T) {
	s := New().Settings
	ctx := context.Background()
	if _, err := s.Get(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Put(ctx, model.Setting{DispenserEmptyingTime: 2, DispenserFillingTime: 3}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DispenserEmptyingTime != 2 || got.DispenserFillingTime != 3 {
		t.Fatalf("unexpected setting %+v", got)
	}
}

// Package memstore implements the core store interfaces in memory. It backs
// the test suites and the demo mode where no MongoDB is reachable.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
)

// Stores bundles one in-memory implementation per entity.
type Stores struct {
	Ingredients *IngredientStore
	Recipes     *RecipeStore
	Slots       *SlotStore
	Settings    *SettingStore
	Orders      *OrderStore
	Files       *FileStore
}

// New creates empty stores.
func New() *Stores {
	return &Stores{
		Ingredients: &IngredientStore{data: map[string]model.Ingredient{}},
		Recipes:     &RecipeStore{data: map[string]model.Recipe{}},
		Slots:       &SlotStore{data: map[string]model.DispenserSlot{}},
		Settings:    &SettingStore{},
		Orders:      &OrderStore{data: map[string]model.Order{}},
		Files:       &FileStore{data: map[string]model.File{}},
	}
}

type IngredientStore struct {
	mu   sync.RWMutex
	data map[string]model.Ingredient
}

func (s *IngredientStore) Find(context.Context) ([]model.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Ingredient, 0, len(s.data))
	for _, ing := range s.data {
		out = append(out, ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *IngredientStore) FindByID(_ context.Context, id string) (model.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ing, ok := s.data[id]
	if !ok {
		return model.Ingredient{}, store.ErrNotFound
	}
	return ing, nil
}

func (s *IngredientStore) Create(_ context.Context, ing model.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[ing.ID]; ok {
		return store.ErrConflict
	}
	s.data[ing.ID] = ing
	return nil
}

func (s *IngredientStore) Update(_ context.Context, ing model.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[ing.ID]; !ok {
		return store.ErrNotFound
	}
	s.data[ing.ID] = ing
	return nil
}

func (s *IngredientStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

type RecipeStore struct {
	mu   sync.RWMutex
	data map[string]model.Recipe
}

func (s *RecipeStore) Find(_ context.Context, f store.RecipeFilter) ([]model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Recipe, 0, len(s.data))
	for _, r := range s.data {
		if f.Available != nil && r.IsAvailable != *f.Available {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *RecipeStore) FindByID(_ context.Context, id string) (model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data[id]
	if !ok {
		return model.Recipe{}, store.ErrNotFound
	}
	return r, nil
}

func (s *RecipeStore) Create(_ context.Context, r model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[r.ID]; ok {
		return store.ErrConflict
	}
	s.data[r.ID] = r
	return nil
}

func (s *RecipeStore) Update(_ context.Context, r model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[r.ID]; !ok {
		return store.ErrNotFound
	}
	s.data[r.ID] = r
	return nil
}

func (s *RecipeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *RecipeStore) SetAvailable(_ context.Context, availableIDs []string) error {
	avail := make(map[string]bool, len(availableIDs))
	for _, id := range availableIDs {
		avail[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.data {
		r.IsAvailable = avail[id]
		s.data[id] = r
	}
	return nil
}

type SlotStore struct {
	mu   sync.RWMutex
	data map[string]model.DispenserSlot
}

func (s *SlotStore) Find(context.Context) ([]model.DispenserSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.DispenserSlot, 0, len(s.data))
	for _, slot := range s.data {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (s *SlotStore) FindByID(_ context.Context, id string) (model.DispenserSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.data[id]
	if !ok {
		return model.DispenserSlot{}, store.ErrNotFound
	}
	return slot, nil
}

func (s *SlotStore) Create(_ context.Context, slot model.DispenserSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data {
		if existing.Slot == slot.Slot {
			return store.ErrConflict
		}
	}
	s.data[slot.ID] = slot
	return nil
}

func (s *SlotStore) Update(_ context.Context, slot model.DispenserSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[slot.ID]; !ok {
		return store.ErrNotFound
	}
	for _, existing := range s.data {
		if existing.ID != slot.ID && existing.Slot == slot.Slot {
			return store.ErrConflict
		}
	}
	s.data[slot.ID] = slot
	return nil
}

func (s *SlotStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

type SettingStore struct {
	mu      sync.RWMutex
	setting *model.Setting
}

func (s *SettingStore) Get(context.Context) (model.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.setting == nil {
		return model.Setting{}, store.ErrNotFound
	}
	return *s.setting, nil
}

func (s *SettingStore) Put(_ context.Context, setting model.Setting) error {
	s.mu.Lock()
	s.setting = &setting
	s.mu.Unlock()
	return nil
}

type OrderStore struct {
	mu   sync.RWMutex
	data map[string]model.Order
}

func (s *OrderStore) Find(context.Context) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, 0, len(s.data))
	for _, o := range s.data {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *OrderStore) FindByID(_ context.Context, id string) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.data[id]
	if !ok {
		return model.Order{}, store.ErrNotFound
	}
	return o, nil
}

// Create scans for an existing CREATED order and inserts under the same lock,
// mirroring the conditional insert a database enforces with a partial unique
// index.
func (s *OrderStore) Create(_ context.Context, o model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data {
		if existing.Status == model.OrderCreated {
			return store.ErrConflict
		}
	}
	if _, ok := s.data[o.ID]; ok {
		return store.ErrConflict
	}
	s.data[o.ID] = o
	return nil
}

func (s *OrderStore) TransitionStatus(_ context.Context, id string, from, to model.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data[id]
	if !ok {
		return false, store.ErrNotFound
	}
	if o.Status != from {
		return false, nil
	}
	o.Status = to
	s.data[id] = o
	return true, nil
}

func (s *OrderStore) Save(_ context.Context, o model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[o.ID]; !ok {
		return store.ErrNotFound
	}
	s.data[o.ID] = o
	return nil
}

type FileStore struct {
	mu   sync.RWMutex
	data map[string]model.File
}

func (s *FileStore) Find(context.Context) ([]model.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.File, 0, len(s.data))
	for _, f := range s.data {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStore) FindByID(_ context.Context, id string) (model.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.data[id]
	if !ok {
		return model.File{}, store.ErrNotFound
	}
	return f, nil
}

func (s *FileStore) Create(_ context.Context, f model.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[f.ID]; ok {
		return store.ErrConflict
	}
	s.data[f.ID] = f
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

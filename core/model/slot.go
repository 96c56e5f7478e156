package model

// DispenserSlot maps a physical dispenser position to an ingredient and the
// calibrated measuring cup mounted on it.
type DispenserSlot struct {
	ID   string `json:"id" bson:"_id"`
	Slot int    `json:"slot" bson:"slot"`
	// IngredientID is nil while the slot has no ingredient assigned.
	IngredientID *string `json:"ingredientId" bson:"ingredient_id"`
	// MeasureVolume is the maximum dose delivered per actuation. Nil means
	// the slot has not been calibrated yet.
	MeasureVolume *float64 `json:"measureVolume" bson:"measure_volume"`
	Position      *float64 `json:"position" bson:"position"`
}

// Usable reports whether the slot can actually dispense: it needs both an
// assigned ingredient and a calibrated, non-zero measuring cup. A slot with
// an ingredient but no measure is configured yet not usable.
func (s DispenserSlot) Usable() bool {
	return s.IngredientID != nil && s.MeasureVolume != nil && *s.MeasureVolume > 0
}

package model

import "time"

// RecipeStep references an ingredient by id together with its proportion in
// the recipe. Steps are dispensed in OrderIndex order.
type RecipeStep struct {
	ID           string  `json:"id" bson:"id"`
	IngredientID string  `json:"ingredientId" bson:"ingredient_id"`
	Proportion   float64 `json:"proportion" bson:"proportion"`
	OrderIndex   int     `json:"orderIndex" bson:"order_index"`
}

// Recipe is a cocktail definition. IsAvailable is derived from the current
// dispenser configuration by the availability engine and is never authored by
// clients.
type Recipe struct {
	ID                 string       `json:"id" bson:"_id"`
	Name               string       `json:"name" bson:"name"`
	Description        string       `json:"description" bson:"description"`
	AlcoholLevel       float64      `json:"alcoholLevel" bson:"alcohol_level"`
	AlcoholMinLevel    float64      `json:"alcoholMinLevel" bson:"alcohol_min_level"`
	AlcoholMaxLevel    float64      `json:"alcoholMaxLevel" bson:"alcohol_max_level"`
	DefaultGlassVolume float64      `json:"defaultGlassVolume" bson:"default_glass_volume"`
	IsAvailable        bool         `json:"isAvailable" bson:"is_available"`
	PictureID          *string      `json:"pictureId" bson:"picture_id"`
	Steps              []RecipeStep `json:"steps" bson:"steps"`
	CreatedAt          time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time    `json:"updatedAt" bson:"updated_at"`
}

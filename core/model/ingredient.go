package model

import "time"

// Ingredient is a pourable liquid known to the catalog.
type Ingredient struct {
	ID            string  `json:"id" bson:"_id"`
	Name          string  `json:"name" bson:"name"`
	IsAlcohol     bool    `json:"isAlcohol" bson:"is_alcohol"`
	AlcoholDegree float64 `json:"alcoholDegree" bson:"alcohol_degree"`
	// Viscosity is a positive multiplier applied to dispensing time.
	// Water is 1; thicker liquids take proportionally longer to pour.
	Viscosity float64   `json:"viscosity" bson:"viscosity"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

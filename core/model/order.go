package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderCreated    OrderStatus = "CREATED"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderDone       OrderStatus = "DONE"
	OrderFailed     OrderStatus = "FAILED"
	OrderCanceled   OrderStatus = "CANCELED"
)

// OrderRequest is the client payload creating an order. It carries references
// only; the persisted order embeds immutable snapshots instead.
type OrderRequest struct {
	RecipeID string             `json:"recipeId"`
	Steps    []OrderStepRequest `json:"steps"`
}

// OrderStepRequest references an ingredient by id with a requested quantity.
type OrderStepRequest struct {
	IngredientID string  `json:"ingredientId"`
	Quantity     float64 `json:"quantity"`
	OrderIndex   int     `json:"orderIndex"`
}

// RecipeSnapshot is the recipe as it was when the order was created. Later
// recipe edits must not affect historical orders.
type RecipeSnapshot struct {
	ID                 string       `json:"id" bson:"id"`
	Name               string       `json:"name" bson:"name"`
	Description        string       `json:"description" bson:"description"`
	AlcoholLevel       float64      `json:"alcoholLevel" bson:"alcohol_level"`
	DefaultGlassVolume float64      `json:"defaultGlassVolume" bson:"default_glass_volume"`
	Steps              []RecipeStep `json:"steps" bson:"steps"`
}

// IngredientSnapshot freezes the ingredient fields the dispense pipeline
// needs, most importantly the viscosity at order time.
type IngredientSnapshot struct {
	ID            string  `json:"id" bson:"id"`
	Name          string  `json:"name" bson:"name"`
	IsAlcohol     bool    `json:"isAlcohol" bson:"is_alcohol"`
	AlcoholDegree float64 `json:"alcoholDegree" bson:"alcohol_degree"`
	Viscosity     float64 `json:"viscosity" bson:"viscosity"`
}

// OrderStep is one dispensing step of a persisted order.
type OrderStep struct {
	ID         string             `json:"id" bson:"id"`
	Ingredient IngredientSnapshot `json:"ingredient" bson:"ingredient"`
	Quantity   float64            `json:"quantity" bson:"quantity"`
	Status     OrderStatus        `json:"status" bson:"status"`
	OrderIndex int                `json:"orderIndex" bson:"order_index"`
}

// Order is the historical record of a dispensing request. Orders are never
// deleted and their status is mutated only by the execution controller.
type Order struct {
	ID       string         `json:"id" bson:"_id"`
	Status   OrderStatus    `json:"status" bson:"status"`
	Progress float64        `json:"progress" bson:"progress"`
	Recipe   RecipeSnapshot `json:"recipe" bson:"recipe"`
	Steps    []OrderStep    `json:"steps" bson:"steps"`
	// FailureReason records why a dispatch ended FAILED. Empty otherwise.
	FailureReason string `json:"failureReason,omitempty" bson:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

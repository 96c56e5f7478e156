// Package apperrors defines the typed business errors shared by all services
// and their mapping to HTTP status codes.
package apperrors

import (
	"errors"
	"net/http"
)

// Category classifies an error for transport mapping.
type Category string

const (
	CategoryAuthorization  Category = "authorization"
	CategoryForbidden      Category = "forbidden"
	CategoryIncorrectInput Category = "incorrect-input"
	CategoryNotFound       Category = "not-found"
	CategoryDuplicate      Category = "duplicate"
	CategoryUnknown        Category = "unknown"
)

// Machine-readable slugs carried alongside the human-readable message.
const (
	SlugIncorrectInput              = "INVALID_INPUT"
	SlugIngredientNotFound          = "INGREDIENT_NOT_FOUND"
	SlugIngredientNotAvailable      = "INGREDIENT_NOT_AVAILABLE"
	SlugIngredientReferenced        = "INGREDIENT_STILL_REFERENCED"
	SlugRecipeNotFound              = "RECIPE_NOT_FOUND"
	SlugDispenserSlotNotFound       = "DISPENSER_SLOT_NOT_FOUND"
	SlugDispenserSlotDuplicate      = "DISPENSER_SLOT_ALREADY_EXISTS"
	SlugOrderNotFound               = "ORDER_NOT_FOUND"
	SlugOrderAlreadyInStatusCreated = "ORDER_ALREADY_IN_STATUS_CREATED"
	SlugOrderNotCancelable          = "ORDER_NOT_CANCELABLE"
	SlugFileNotFound                = "FILE_NOT_FOUND"
	SlugMachineCallFailed           = "MACHINE_CALL_FAILED"
	SlugUnknown                     = "UNKNOWN"
)

// Error is a categorized business error. Services return it through the
// regular error interface; the HTTP layer unwraps it with errors.As.
type Error struct {
	Message  string   `json:"error"`
	Slug     string   `json:"slug"`
	Category Category `json:"errorType"`
}

func (e *Error) Error() string { return e.Message }

func New(category Category, msg, slug string) *Error {
	return &Error{Message: msg, Slug: slug, Category: category}
}

func NewForbidden(msg, slug string) *Error {
	return New(CategoryForbidden, msg, slug)
}

func NewIncorrectInput(msg, slug string) *Error {
	return New(CategoryIncorrectInput, msg, slug)
}

func NewNotFound(msg, slug string) *Error {
	return New(CategoryNotFound, msg, slug)
}

func NewDuplicate(msg, slug string) *Error {
	return New(CategoryDuplicate, msg, slug)
}

func NewUnknown(msg, slug string) *Error {
	return New(CategoryUnknown, msg, slug)
}

// As extracts an *Error from err. Unexpected errors are wrapped as an
// unknown-category Error so the caller always gets a structured body.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewUnknown(err.Error(), SlugUnknown)
}

// HTTPStatus maps an error category to its HTTP status code.
func HTTPStatus(err error) int {
	switch As(err).Category {
	case CategoryAuthorization:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryIncorrectInput:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

package repositories

import "errors"

// Sentinel errors shared by every repository implementation. Handlers match
// them with errors.Is to pick the response status.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrProductNotInCart = errors.New("product not in cart")
)

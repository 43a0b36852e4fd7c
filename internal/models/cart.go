package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartLine is one (product reference, quantity) entry inside a cart.
// A cart holds at most one line per distinct product.
type CartLine struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Quantity int                `json:"quantity" bson:"quantity"`
}

// Cart is a shopping cart. Carts are created empty and are never deleted;
// only their line sequence is mutated or cleared.
type Cart struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Products []CartLine         `json:"products" bson:"products"`
}

// PopulatedLine is a cart line with its product reference resolved to the
// full current record. Product is nil when the referenced product has been
// deleted since the line was added; renderers skip such lines.
type PopulatedLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// PopulatedCart is a cart prepared for display.
type PopulatedCart struct {
	ID       primitive.ObjectID `json:"id"`
	Products []PopulatedLine    `json:"products"`
}

// CartLineRequest is one entry of the bulk cart update payload.
type CartLineRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required"`
}

// QuantityRequest is the payload for updating a single line's quantity.
type QuantityRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product represents one shirt in the catalog.
type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Code        string             `json:"code" bson:"code"`
	Price       float64            `json:"price" bson:"price"`
	Status      bool               `json:"status" bson:"status"`
	Stock       int                `json:"stock" bson:"stock"`
	Category    string             `json:"category" bson:"category"`
}

// CreateProductRequest is the payload for product creation. Every field is
// required; "required" fails on zero values, so a price or stock of 0 and a
// status of false are rejected the same way missing fields are.
type CreateProductRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Code        string  `json:"code" validate:"required"`
	Price       float64 `json:"price" validate:"required"`
	Status      bool    `json:"status" validate:"required"`
	Stock       int     `json:"stock" validate:"required"`
	Category    string  `json:"category" validate:"required"`
}

// UpdateProductRequest is the payload for product modification. Fields left
// at their zero value keep the stored value when merging.
type UpdateProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Code        string  `json:"code"`
	Price       float64 `json:"price"`
	Status      bool    `json:"status"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

// Product returns the catalog record a creation payload describes.
func (r CreateProductRequest) Product() *Product {
	return &Product{
		Title:       r.Title,
		Description: r.Description,
		Code:        r.Code,
		Price:       r.Price,
		Status:      r.Status,
		Stock:       r.Stock,
		Category:    r.Category,
	}
}

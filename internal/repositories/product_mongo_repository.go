package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"camisetas/internal/models"
)

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	col *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository
// backed by the "products" collection.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		col: db.Collection("products"),
	}
}

// GetAll retrieves every product from the database.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetPage retrieves one page of products matching the filter, sorted by
// price when priceSort is SortAsc or SortDesc.
func (r *MongoProductRepository) GetPage(ctx context.Context, filter ProductFilter, page, limit, priceSort int) (*ProductPage, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	if priceSort != SortNone {
		opts.SetSort(bson.D{{Key: "price", Value: priceSort}})
	}

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get product page %d: %w", page, err)
	}

	docs := []models.Product{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode product page %d: %w", page, err)
	}

	return newProductPage(docs, total, page, limit), nil
}

// GetByID retrieves a single product by its ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id.Hex(), ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id.Hex(), err)
	}
	return &product, nil
}

// Create inserts a new product and returns its assigned ID.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) (primitive.ObjectID, error) {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, product); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create product: %w", err)
	}
	return product.ID, nil
}

// Update replaces the stored product with the given record.
func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, product *models.Product) error {
	product.ID = id
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, product)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product with ID %s for update: %w", id.Hex(), ErrProductNotFound)
	}
	return nil
}

// Delete removes a product by its ID. Cart lines referencing it are left in
// place; populate resolves them to nil.
func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product with ID %s for deletion: %w", id.Hex(), ErrProductNotFound)
	}
	return nil
}

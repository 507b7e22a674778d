package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Receipt-Scan-Backend/domain"
	"Receipt-Scan-Backend/entities"
	"Receipt-Scan-Backend/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type (
	ReceiptRepository interface {
		Create(ctx context.Context, receipt *entities.Receipt) (string, error)
		// GetByID returns (nil, nil) when the id is unparseable or no document
		// matches; not-found is a normal outcome, not an error.
		GetByID(ctx context.Context, id string) (bson.M, error)
		// UpdateByID merges patch into the stored document at the top level.
		// Returns false when the id is unparseable or unknown. A matched
		// document counts as updated even when no field value changed.
		UpdateByID(ctx context.Context, id string, patch bson.M) (bool, error)
	}

	receiptRepository struct {
		pool       *database.MongoPool
		collection string
	}
)

func NewReceiptRepository(pool *database.MongoPool, collection string) ReceiptRepository {
	return &receiptRepository{
		pool:       pool,
		collection: collection,
	}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entities.Receipt) (string, error) {
	coll, err := r.pool.Collection(ctx, r.collection)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	now := time.Now().UTC()
	receipt.CreatedAt = now
	receipt.UpdatedAt = now

	res, err := coll.InsertOne(ctx, receipt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%w: unexpected inserted id type %T", domain.ErrStorageFailure, res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *receiptRepository) GetByID(ctx context.Context, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	coll, err := r.pool.Collection(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	var doc bson.M
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return doc, nil
}

func (r *receiptRepository) UpdateByID(ctx context.Context, id string, patch bson.M) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	coll, err := r.pool.Collection(ctx, r.collection)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	var existing bson.M
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&existing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	set := buildUpdateSet(existing, patch)

	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return res.MatchedCount > 0, nil
}

// buildUpdateSet produces the $set document for a merge update: every key in
// patch overwrites the stored value, identifiers are never reassigned, the
// original createdAt is force-restored and updatedAt is always refreshed.
func buildUpdateSet(existing bson.M, patch bson.M) bson.M {
	set := bson.M{}
	for key, value := range patch {
		if key == "_id" || key == "id" {
			continue
		}
		set[key] = value
	}

	if createdAt, ok := existing["createdAt"]; ok {
		set["createdAt"] = createdAt
	}
	set["updatedAt"] = time.Now().UTC()

	return set
}

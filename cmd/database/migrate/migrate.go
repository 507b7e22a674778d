package migration

import (
	"context"
	"fmt"
	"log"

	"Receipt-Scan-Backend/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Migrate bootstraps the secondary indexes on the receipts collection.
func Migrate(pool *database.MongoPool, collection string) error {
	ctx := context.Background()

	coll, err := pool.Collection(ctx, collection)
	if err != nil {
		log.Printf("Error connecting for index setup: %v", err)
		return err
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "processingMetadata.userId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("Error creating receipt indexes: %v", err)
		return err
	}

	fmt.Println("Database index setup complete")
	return nil
}

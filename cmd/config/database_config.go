package config

import (
	"context"
	"log"

	"Receipt-Scan-Backend/internal/utils"
	"Receipt-Scan-Backend/pkg/database"
)

func ConnectDB() (*database.MongoPool, error) {
	pool := database.NewMongoPool(
		utils.GetConfig("MONGODB_URI"),
		utils.GetConfig("MONGODB_DATABASE"),
	)

	// fail fast when the store is unreachable at boot
	if _, err := pool.Collection(context.Background(), utils.GetConfig("MONGODB_COLLECTION")); err != nil {
		log.Printf("Database connection failed: %v", err)
		return nil, err
	}
	return pool, nil
}

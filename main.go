package main

import (
	"context"

	"Receipt-Scan-Backend/cmd/config"
	migration "Receipt-Scan-Backend/cmd/database/migrate"
	"Receipt-Scan-Backend/internal/utils"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	utils.LoadConfig()

	pool, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close(context.Background())

	if err := migration.Migrate(pool, utils.GetConfig("MONGODB_COLLECTION")); err != nil {
		log.Fatalf("failed to set up indexes: %v", err)
	}

	app, err := config.NewApp(pool)
	if err != nil {
		log.Fatalf("failed to set up app: %v", err)
	}

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8080"
	}

	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

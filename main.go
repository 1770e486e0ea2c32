package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/table-order-app/config"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/realtime"
	"github.com/yeremiapane/table-order-app/router"
	"github.com/yeremiapane/table-order-app/services"
	"github.com/yeremiapane/table-order-app/utils"
)

func main() {
	// .env opsional; di produksi semua lewat environment asli.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.OrderLine{},
		&models.Category{},
		&models.Product{},
		&models.WaiterCall{},
		&models.AuditLog{},
		&models.AppSetting{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("failed to migrate database: %v", err)
	}

	registry := realtime.NewRegistry()
	bus := realtime.NewBus(registry)

	// Log server di-mirror ke panel dev lewat websocket.
	hook := services.NewLogStreamHook(bus)
	utils.InfoLogger.AddHook(hook)
	utils.ErrorLogger.AddHook(hook)

	r := router.SetupRouter(db, registry, bus)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	utils.InfoLogger.Infof("server listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("server stopped: %v", err)
	}
}

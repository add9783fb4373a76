package main

import (
	"log"

	"qurotech/config"
	"qurotech/database"
	certificateRoutes "qurotech/routers/certificateRoutes"
	orderRoutes "qurotech/routers/orderRoutes"
	paymentRoutes "qurotech/routers/paymentRoutes"
	"qurotech/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	orderRoutes.SetupOrderRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	certificateRoutes.SetupCertificateRoutes(app)

	// Recover paid-but-unconfirmed orders in the background
	utils.InitializeReconcileScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}

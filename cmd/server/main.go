package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	webAdapter "cdj-supply/internal/adapters/web"
	"cdj-supply/internal/app"
	"cdj-supply/internal/core"
	"cdj-supply/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	policy := core.DefaultStockPolicy()
	if raw := os.Getenv("LOW_STOCK_THRESHOLD"); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil || threshold < 1 {
			log.Fatalf("invalid LOW_STOCK_THRESHOLD %q", raw)
		}
		policy.LowStockThreshold = threshold
	}

	inventory := core.NewInventoryService(pool, policy)
	sales := core.NewSaleService(pool, inventory)
	reporting := core.NewReportingService(pool, sales)
	users := core.NewUserService(pool)

	svc := app.NewAppService(inventory, sales, reporting, users)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}

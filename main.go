package main

import (
	"context"
	"lexorial/config"
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/routers"
	"lexorial/utils"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	utils.InitStorage()

	var redisClient *redis.Client
	if config.AppConfig.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: config.AppConfig.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Redis not reachable at %s, rate limiting is best effort: %v", config.AppConfig.RedisAddr, err)
		}
		cancel()
	} else {
		log.Println("Warning: REDIS_ADDR not set. Progress rate limiting is disabled.")
	}

	app := routers.NewApp(middleware.NewRateLimiter(redisClient))

	scheduler, err := utils.InitializeProgressSchedulers(config.AppConfig.ReconcileCron, config.AppConfig.ProgressMaxAttempts)
	if err != nil {
		log.Fatal(err)
	}
	defer scheduler.Stop()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}

package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	rdb *redis.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

// ConnectRedisWithRetry connects the client used for the change feed.
// The engine degrades to pull-on-demand if redis never comes up, so we cap
// the retries instead of blocking forever like the database connect does.
func ConnectRedisWithRetry() {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		address = "127.0.0.1:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err == nil {
			rdb = client
			log.Printf("connected to redis (attempt=%d)", attempt)
			return
		}
		log.Printf("failed to connect redis (attempt=%d): %v", attempt, err)
		time.Sleep(time.Second * time.Duration(attempt))
	}
	log.Printf("redis unavailable at %s; change feed disabled", address)
}

package router

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"
)

// limiterDatabase keeps rate limit counters apart from cache and queue keys.
const limiterDatabase = 1

// NewLimiterStorage builds the rate limiter storage on the same Redis server
// as the given client.
func NewLimiterStorage(client *goredis.Client) fiber.Storage {
	host := "localhost"
	port := 6379
	password := ""
	if client != nil {
		addr := client.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		password = client.Options().Password
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: limiterDatabase,
		Reset:    false,
	})
}

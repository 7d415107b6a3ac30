package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/vitrinehq/vitrine/app/repository"
	"github.com/vitrinehq/vitrine/internal/pkg/cache"
)

const (
	CacheKeySellerSummary = "statistics:seller:%d:%s" // seller id, date YYYY-MM-DD
	CacheExpiration       = time.Minute
)

// SummaryReader aggregates seller orders.
type SummaryReader interface {
	SummaryForSeller(ctx context.Context, sellerID uint, since time.Time) (*repository.OrderSummary, error)
}

// Store is the key/value cache summaries are kept in.
type Store interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
	Delete(key string) error
}

type redisStore struct{}

func (redisStore) Get(key string) (string, error) { return cache.Get(key) }
func (redisStore) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}
func (redisStore) Delete(key string) error { return cache.Delete(key) }

// RedisStore uses the shared Redis cache.
func RedisStore() Store {
	return redisStore{}
}

// SellerSummary is the dashboard overview. Today counts orders since
// midnight UTC.
type SellerSummary struct {
	repository.OrderSummary
	Date string `json:"date"`
}

type Service struct {
	orders SummaryReader
	store  Store
	now    func() time.Time
}

func NewService(orders SummaryReader, store Store) *Service {
	return &Service{orders: orders, store: store, now: time.Now}
}

// SellerSummary returns the cached summary of the seller, computing it on a
// cache miss. Cache failures only cost a database query.
func (s *Service) SellerSummary(ctx context.Context, sellerID uint) (*SellerSummary, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	date := today.Format("2006-01-02")
	key := fmt.Sprintf(CacheKeySellerSummary, sellerID, date)

	if s.store != nil {
		if val, err := s.store.Get(key); err == nil {
			var cached SellerSummary
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	summary, err := s.orders.SummaryForSeller(ctx, sellerID, today)
	if err != nil {
		return nil, err
	}
	result := &SellerSummary{OrderSummary: *summary, Date: date}

	if s.store != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.store.Set(key, string(raw), CacheExpiration); err != nil {
				log.Warnf("[Statistics] Failed to cache summary for seller %d: %v", sellerID, err)
			}
		}
	}
	return result, nil
}

// Invalidate drops today's cached summary of the seller.
func (s *Service) Invalidate(sellerID uint) {
	if s.store == nil {
		return
	}
	key := fmt.Sprintf(CacheKeySellerSummary, sellerID, s.now().UTC().Format("2006-01-02"))
	if err := s.store.Delete(key); err != nil {
		log.Warnf("[Statistics] Failed to invalidate summary for seller %d: %v", sellerID, err)
	}
}

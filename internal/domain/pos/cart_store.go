// internal/domain/pos/cart_store.go
package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CartStore persists register-session carts between requests. Carts are
// transient working state; losing the store loses only unsubmitted carts.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisCartStore keeps carts as JSON blobs in Redis with a TTL, so an
// abandoned register session eventually cleans itself up.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartStore creates a Redis-backed cart store
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisCartStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("pos:cart:%s", sessionID)
}

// Get loads the cart for a session, returning a fresh empty cart when
// none exists yet
func (s *RedisCartStore) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	data, err := s.client.Get(ctx, cartKey(sessionID)).Result()
	if err == redis.Nil {
		return NewCart(sessionID), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return &cart, nil
}

// Save stores the cart and refreshes its TTL
func (s *RedisCartStore) Save(ctx context.Context, cart *Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(cart.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

// Delete removes the cart for a session
func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// MemoryCartStore is an in-memory store used by tests and single-node
// setups without Redis.
type MemoryCartStore struct {
	carts map[string]*Cart
}

// NewMemoryCartStore creates an in-memory cart store
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]*Cart)}
}

func (s *MemoryCartStore) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}
	if cart, ok := s.carts[sessionID]; ok {
		clone := *cart
		clone.Lines = append([]CartLine(nil), cart.Lines...)
		return &clone, nil
	}
	return NewCart(sessionID), nil
}

func (s *MemoryCartStore) Save(ctx context.Context, cart *Cart) error {
	clone := *cart
	clone.Lines = append([]CartLine(nil), cart.Lines...)
	s.carts[cart.SessionID] = &clone
	return nil
}

func (s *MemoryCartStore) Delete(ctx context.Context, sessionID string) error {
	delete(s.carts, sessionID)
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

const (
	calculationsKey = "mortgage:calculations"
	valuesKey       = "mortgage:values"
)

// RedisStore implements Store on a Redis server. Calculations live as JSON
// blobs in a single hash keyed by ID; the last entered inputs are a plain
// string key that expires after ttl (zero keeps it forever).
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed store. An empty prefix uses the
// default "mortgage:" keys.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: prefix, now: time.Now}
}

// NewRedisClient parses a redis:// URL or a bare host:port address.
func NewRedisClient(addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}
	return redis.NewClient(opts), nil
}

func (s *RedisStore) SaveValues(ctx context.Context, values mortgage.LoanScenario) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(valuesKey), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save values: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadValues(ctx context.Context) (mortgage.LoanScenario, error) {
	var values mortgage.LoanScenario

	data, err := s.rdb.Get(ctx, s.key(valuesKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return values, fmt.Errorf("saved values: %w", ErrNotFound)
	}
	if err != nil {
		return values, fmt.Errorf("load values: %w", err)
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return values, fmt.Errorf("decode values: %w", err)
	}
	return values, nil
}

func (s *RedisStore) List(ctx context.Context) ([]SavedCalculation, error) {
	entries, err := s.rdb.HGetAll(ctx, s.key(calculationsKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}

	calcs := make([]SavedCalculation, 0, len(entries))
	for id, raw := range entries {
		calc, err := decodeCalculation([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("calculation %s: %w", id, err)
		}
		calcs = append(calcs, calc)
	}
	sortByDate(calcs)
	return calcs, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (SavedCalculation, error) {
	data, err := s.rdb.HGet(ctx, s.key(calculationsKey), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return SavedCalculation{}, fmt.Errorf("calculation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return SavedCalculation{}, fmt.Errorf("get calculation %s: %w", id, err)
	}
	return decodeCalculation(data)
}

func (s *RedisStore) Save(ctx context.Context, calc SavedCalculation) (SavedCalculation, error) {
	calc = prepare(calc, s.now)
	data, err := json.Marshal(calc)
	if err != nil {
		return SavedCalculation{}, fmt.Errorf("encode calculation: %w", err)
	}

	created, err := s.rdb.HSetNX(ctx, s.key(calculationsKey), calc.ID, data).Result()
	if err != nil {
		return SavedCalculation{}, fmt.Errorf("save calculation %s: %w", calc.ID, err)
	}
	if !created {
		return SavedCalculation{}, fmt.Errorf("calculation %s: %w", calc.ID, ErrConflict)
	}
	return calc, nil
}

// updateScript replaces a hash field only when it already exists, so a
// concurrent Delete cannot be undone by an update.
var updateScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`)

func (s *RedisStore) Update(ctx context.Context, calc SavedCalculation) error {
	data, err := json.Marshal(calc)
	if err != nil {
		return fmt.Errorf("encode calculation: %w", err)
	}

	updated, err := updateScript.Run(ctx, s.rdb, []string{s.key(calculationsKey)}, calc.ID, data).Int()
	if err != nil {
		return fmt.Errorf("update calculation %s: %w", calc.ID, err)
	}
	if updated == 0 {
		return fmt.Errorf("calculation %s: %w", calc.ID, ErrNotFound)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	removed, err := s.rdb.HDel(ctx, s.key(calculationsKey), id).Result()
	if err != nil {
		return fmt.Errorf("delete calculation %s: %w", id, err)
	}
	if removed == 0 {
		return fmt.Errorf("calculation %s: %w", id, ErrNotFound)
	}
	return nil
}

// key swaps the default "mortgage:" namespace for the configured prefix.
func (s *RedisStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + name[len("mortgage:"):]
}

func decodeCalculation(data []byte) (SavedCalculation, error) {
	var calc SavedCalculation
	if err := json.Unmarshal(data, &calc); err != nil {
		return SavedCalculation{}, fmt.Errorf("decode calculation: %w", err)
	}
	return calc, nil
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/lexicon"
)

// addTermScript inserts into the membership set and, only when the term was
// new, appends it to the ordered list
var addTermScript = redis.NewScript(`
if redis.call('SADD', KEYS[1], ARGV[1]) == 1 then
	redis.call('RPUSH', KEYS[2], ARGV[1])
	return 1
end
return 0
`)

// RedisLexicon shares one spam lexicon between several detector processes
type RedisLexicon struct {
	client  *redis.Client
	setKey  string
	listKey string
	logger  *zap.Logger
}

// NewRedisLexicon connects to redisURL and keeps the lexicon under prefix
func NewRedisLexicon(redisURL, prefix string, logger *zap.Logger) (*RedisLexicon, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return newRedisLexicon(client, prefix, logger), nil
}

func newRedisLexicon(client *redis.Client, prefix string, logger *zap.Logger) *RedisLexicon {
	return &RedisLexicon{
		client:  client,
		setKey:  prefix + ":set",
		listKey: prefix + ":list",
		logger:  logger,
	}
}

// Terms returns the stored terms in insertion order
func (l *RedisLexicon) Terms(ctx context.Context) ([]string, error) {
	terms, err := l.client.LRange(ctx, l.listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon from Redis: %w", err)
	}
	return terms, nil
}

// Add inserts term if it is new
func (l *RedisLexicon) Add(ctx context.Context, term string) (bool, error) {
	term, ok := lexicon.NormalizeTerm(term)
	if !ok {
		return false, nil
	}

	n, err := addTermScript.Run(ctx, l.client, []string{l.setKey, l.listKey}, term).Int()
	if err != nil {
		return false, fmt.Errorf("failed to add lexicon term to Redis: %w", err)
	}
	return n == 1, nil
}

// Close closes the Redis client
func (l *RedisLexicon) Close() error {
	return l.client.Close()
}

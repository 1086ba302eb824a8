// Package redisgate implements the subscription gate on a Redis set per
// chat. Membership is maintained by the subscription service; the pipeline
// only reads it.
package redisgate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Gate struct {
	client *redis.Client
	prefix string
}

func New(redisURL string) (*Gate, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client), nil
}

func NewWithClient(client *redis.Client) *Gate {
	return &Gate{
		client: client,
		prefix: "subscribers:",
	}
}

func (g *Gate) key(chatID int64) string {
	return g.prefix + strconv.FormatInt(chatID, 10)
}

func (g *Gate) IsSubscribed(ctx context.Context, chatID, userID int64) (bool, error) {
	member, err := g.client.SIsMember(ctx, g.key(chatID), strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return member, nil
}

func (g *Gate) Subscribe(ctx context.Context, chatID, userID int64) error {
	if err := g.client.SAdd(ctx, g.key(chatID), strconv.FormatInt(userID, 10)).Err(); err != nil {
		return fmt.Errorf("add subscriber: %w", err)
	}
	return nil
}

func (g *Gate) Unsubscribe(ctx context.Context, chatID, userID int64) error {
	if err := g.client.SRem(ctx, g.key(chatID), strconv.FormatInt(userID, 10)).Err(); err != nil {
		return fmt.Errorf("remove subscriber: %w", err)
	}
	return nil
}

func (g *Gate) Close() error {
	return g.client.Close()
}

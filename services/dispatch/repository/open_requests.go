package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/evgo/dispatch/internal/pkg/constants"
	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/go-redis/redis/v8"
)

// OpenRequestCache keeps recently notified, still open requests in Redis so
// drivers joining later can be caught up. Members of the sorted set are
// request IDs scored by notification time in milliseconds; each payload key
// expires after the replay window.
type OpenRequestCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOpenRequestCache creates a cache whose entries live for ttl
func NewOpenRequestCache(client *redis.Client, ttl time.Duration) *OpenRequestCache {
	return &OpenRequestCache{
		client: client,
		ttl:    ttl,
	}
}

// Add indexes req as open
func (c *OpenRequestCache) Add(ctx context.Context, req *models.DispatchRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	at := req.CreatedAt
	if req.NotifiedAt != nil {
		at = *req.NotifiedAt
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, payloadKey(req.ID), payload, c.ttl)
	pipe.ZAdd(ctx, constants.KeyOpenRequests, &redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: req.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to index open request: %w", err)
	}
	return nil
}

// Remove drops a request from the index
func (c *OpenRequestCache) Remove(ctx context.Context, requestID string) error {
	pipe := c.client.TxPipeline()
	pipe.ZRem(ctx, constants.KeyOpenRequests, requestID)
	pipe.Del(ctx, payloadKey(requestID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove open request: %w", err)
	}
	return nil
}

// ListSince returns open requests notified at or after since, oldest first.
// Older index entries and entries whose payload expired are pruned.
func (c *OpenRequestCache) ListSince(ctx context.Context, since time.Time) ([]*models.DispatchRequest, error) {
	cutoff := since.UnixMilli()
	if err := c.client.ZRemRangeByScore(ctx, constants.KeyOpenRequests, "-inf", "("+strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune open requests: %w", err)
	}

	ids, err := c.client.ZRangeByScore(ctx, constants.KeyOpenRequests, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list open requests: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, payloadKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load open requests: %w", err)
	}

	requests := make([]*models.DispatchRequest, 0, len(ids))
	var expired []interface{}
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			expired = append(expired, ids[i])
			continue
		}
		var req models.DispatchRequest
		if err := json.Unmarshal(data, &req); err != nil {
			expired = append(expired, ids[i])
			continue
		}
		requests = append(requests, &req)
	}

	if len(expired) > 0 {
		_ = c.client.ZRem(ctx, constants.KeyOpenRequests, expired...).Err()
	}
	return requests, nil
}

func payloadKey(requestID string) string {
	return fmt.Sprintf(constants.KeyRequestPayload, requestID)
}

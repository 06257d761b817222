// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is the production [Store] backend: each collection key maps to one
// Redis string value holding the marshaled JSON document.
//
// Collections must outlive restarts, so no TTL is ever set.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-connected client (see platform/redis.NewClient).
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get implements [Store].
func (r *Redis) Get(ctx context.Context, key string, target any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("kv: redis read of %q failed: %w", key, err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("kv: redis decode of %q failed: %w", key, err)
	}

	return true, nil
}

// Put implements [Store].
func (r *Redis) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: redis encode of %q failed: %w", key, err)
	}

	if err := r.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("kv: redis write of %q failed: %w", key, err)
	}

	return nil
}

// Delete implements [Store].
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv: redis delete of %q failed: %w", key, err)
	}

	return nil
}

// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is a process-local [Store] backed by a plain map.
//
// # Usage
//
// It backs unit tests and the STORAGE_DRIVER=memory development mode. Values
// are kept as marshaled JSON so Get/Put round-trip through exactly the same
// encoding as the durable backends.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements [Store].
func (m *Memory) Get(ctx context.Context, key string, target any) (bool, error) {
	m.mu.RLock()
	raw, found := m.data[key]
	m.mu.RUnlock()

	if !found {
		return false, nil
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("kv: memory decode of %q failed: %w", key, err)
	}

	return true, nil
}

// Put implements [Store].
func (m *Memory) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: memory encode of %q failed: %w", key, err)
	}

	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()

	return nil
}

// Delete implements [Store].
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	return nil
}

// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package kv_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantran/phishguard/internal/platform/kv"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// storeUnderTest builds each backend against the same contract suite.
func storesUnderTest(t *testing.T) map[string]kv.Store {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]kv.Store{
		"memory": kv.NewMemory(),
		"redis":  kv.NewRedis(client),
	}
}

func TestStore_AbsentKeyReadsAsAbsent(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			var out sample
			found, err := store.Get(context.Background(), "pg:missing", &out)

			require.NoError(t, err)
			assert.False(t, found)
			assert.Zero(t, out)
		})
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := sample{Name: "reports", Count: 2}

			require.NoError(t, store.Put(ctx, kv.KeyReports, in))

			var out sample
			found, err := store.Get(ctx, kv.KeyReports, &out)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, in, out)
		})
	}
}

func TestStore_PutReplacesWholeDocument(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Put(ctx, kv.KeyUsers, []sample{{Name: "a"}, {Name: "b"}}))
			require.NoError(t, store.Put(ctx, kv.KeyUsers, []sample{{Name: "c"}}))

			var out []sample
			found, err := store.Get(ctx, kv.KeyUsers, &out)
			require.NoError(t, err)
			assert.True(t, found)
			require.Len(t, out, 1)
			assert.Equal(t, "c", out[0].Name)
		})
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Put(ctx, kv.KeySession, sample{Name: "alex"}))
			require.NoError(t, store.Delete(ctx, kv.KeySession))

			var out sample
			found, err := store.Get(ctx, kv.KeySession, &out)
			require.NoError(t, err)
			assert.False(t, found)

			// Deleting an absent key must not fail.
			require.NoError(t, store.Delete(ctx, kv.KeySession))
		})
	}
}

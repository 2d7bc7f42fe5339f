//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformredis "verigate/internal/platform/redis"
	"verigate/internal/verification/models"
	"verigate/pkg/testutil/containers"
)

func TestRedisVerdictCache(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	client := &platformredis.Client{Client: rc.Client}
	cache := NewRedisVerdictCache(client, time.Minute)

	t.Run("miss returns not found", func(t *testing.T) {
		_, err := cache.Get(ctx, "vr_missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put and get round trip", func(t *testing.T) {
		v := &models.VerificationVerdict{
			Status:        models.VerdictVerified,
			Confidence:    92,
			Summary:       "all signals passed",
			IssuedAt:      time.Now().UTC().Truncate(time.Second),
			IntegrityHash: "aabbcc",
		}
		require.NoError(t, cache.Put(ctx, "vr_1", v))

		got, err := cache.Get(ctx, "vr_1")
		require.NoError(t, err)
		assert.Equal(t, v.Status, got.Status)
		assert.Equal(t, v.Confidence, got.Confidence)
		assert.Equal(t, v.IntegrityHash, got.IntegrityHash)
	})

	t.Run("entries expire", func(t *testing.T) {
		short := NewRedisVerdictCache(client, 50*time.Millisecond)
		require.NoError(t, short.Put(ctx, "vr_2", &models.VerificationVerdict{Status: models.VerdictRejected}))

		time.Sleep(100 * time.Millisecond)
		_, err := short.Get(ctx, "vr_2")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

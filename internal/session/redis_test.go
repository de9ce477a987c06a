package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/session"
	"github.com/Natalia-54/sistema-academico-jfk/testing/testredis"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	redisContainer := testredis.SetupSharedRedis(t)
	defer redisContainer.Cleanup(t)

	client := redisContainer.Client(t)
	ctx := context.Background()

	teacherID := int64(4)
	specialty := "Matemática"
	teacher := account.Principal{
		ID:         2,
		Code:       "T200",
		Role:       account.RoleTeacher,
		Status:     account.StatusActive,
		FirstNames: "Ana",
		LastNames:  "Ruiz",
		Specialty:  &specialty,
		TeacherID:  &teacherID,
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		testredis.FlushAll(t, client)
		store := session.NewRedisStore(client, time.Hour)

		token, err := store.Create(ctx, teacher)
		require.NoError(t, err)

		got, err := store.Get(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, teacher, *got)

		ttl, err := client.TTL(ctx, "session:"+token).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		testredis.FlushAll(t, client)
		store := session.NewRedisStore(client, time.Hour)

		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("DestroyTwice", func(t *testing.T) {
		testredis.FlushAll(t, client)
		store := session.NewRedisStore(client, time.Hour)

		token, err := store.Create(ctx, teacher)
		require.NoError(t, err)

		require.NoError(t, store.Destroy(ctx, token))
		require.NoError(t, store.Destroy(ctx, token))

		_, err = store.Get(ctx, token)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("UnavailableBackend", func(t *testing.T) {
		down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
		store := session.NewRedisStore(down, time.Hour)
		defer store.Close()

		_, err := store.Create(ctx, teacher)
		assert.ErrorIs(t, err, session.ErrStorage)

		_, err = store.Get(ctx, "token")
		assert.ErrorIs(t, err, session.ErrStorage)
	})
}

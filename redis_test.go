package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"time-tracker-backend/internal/logger"
)

func newCachedTestEnv(t *testing.T) (*testEnv, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return newTestEnvWithCache(t, newTotalsCache(client, time.Minute, logger.Discard())), mr
}

func getWeekly(t *testing.T, env *testEnv, date string) WeeklyTotals {
	t.Helper()
	w := env.do(http.MethodGet, "/api/totals/weekly?date="+date, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var totals WeeklyTotals
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &totals))
	return totals
}

func getDaily(t *testing.T, env *testEnv, date string) DailyTotals {
	t.Helper()
	w := env.do(http.MethodGet, "/api/totals/daily?date="+date, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var totals DailyTotals
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &totals))
	return totals
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	for _, url := range []string{mr.Addr(), "redis://" + mr.Addr()} {
		client, err := newRedisClient(ctx, url)
		require.NoError(t, err, url)
		require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
		client.Close()
	}

	addr := mr.Addr()
	mr.Close()
	_, err := newRedisClient(ctx, addr)
	assert.Error(t, err)
}

func TestWeeklyTotalsCachedAndInvalidatedOnCreate(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	env.mustCreate(t, `{"date":"2024-01-02","category":"Coding","durationHours":1,"note":"tuesday"}`)

	first := getWeekly(t, env, "2024-01-03")
	assert.Equal(t, 1.0, first.WeeklyTotalHours)
	require.True(t, mr.Exists("totals:weekly:2024-01-01"))
	assert.Equal(t, time.Minute, mr.TTL("totals:weekly:2024-01-01"))

	// Cached body round-trips to the same response.
	assert.Equal(t, first, getWeekly(t, env, "2024-01-07"))

	env.mustCreate(t, `{"date":"2024-01-05","category":"Learning","durationHours":2,"note":"friday"}`)
	assert.False(t, mr.Exists("totals:weekly:2024-01-01"))

	second := getWeekly(t, env, "2024-01-01")
	assert.Equal(t, 3.0, second.WeeklyTotalHours)
	assert.Equal(t, map[string]float64{"Coding": 1, "Learning": 2}, hoursByName(second.ByCategory))
	assert.Equal(t, "2024-01-01T00:00:00.000Z", second.WeekStart)
	assert.Equal(t, "2024-01-07T23:59:59.999Z", second.WeekEnd)
}

func TestDailyTotalsServedFromCache(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	env.mustCreate(t, `{"date":"2024-03-15","category":"Coding","durationHours":1.5,"note":"morning"}`)

	computed := getDaily(t, env, "2024-03-15")
	require.True(t, mr.Exists("totals:daily:2024-03-15"))

	// Reads no longer reach storage once the totals are cached.
	env.store.failWith = assert.AnError
	assert.Equal(t, computed, getDaily(t, env, "2024-03-15"))

	w := env.do(http.MethodGet, "/api/totals/daily?date=2024-03-16", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestQuickLogInvalidatesDailyTotal(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	env.mustCreate(t, `{"date":"2024-03-15","category":"Coding","durationHours":1,"note":"morning"}`)
	assert.Equal(t, 1.0, getDaily(t, env, "2024-03-15").DailyTotalHours)
	getWeekly(t, env, "2024-03-15")

	w := env.do(http.MethodPost, "/api/time-entry",
		`{"date":"2024-03-15","category":"Learning","durationHours":0.75,"note":"evening"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp legacyEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1.75, resp.DailyTotalHours)
	assert.False(t, mr.Exists("totals:weekly:2024-03-11"))
	assert.Equal(t, 1.75, getDaily(t, env, "2024-03-15").DailyTotalHours)
}

func TestCorruptCacheEntryIsRecomputed(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	env.mustCreate(t, `{"date":"2024-03-15","category":"Coding","durationHours":2,"note":"morning"}`)
	require.NoError(t, mr.Set("totals:daily:2024-03-15", "not json"))

	assert.Equal(t, 2.0, getDaily(t, env, "2024-03-15").DailyTotalHours)

	cached, err := mr.Get("totals:daily:2024-03-15")
	require.NoError(t, err)
	var totals DailyTotals
	require.NoError(t, json.Unmarshal([]byte(cached), &totals))
	assert.Equal(t, 2.0, totals.DailyTotalHours)
}

func TestRedisOutageFallsBackToStorage(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	mr.Close()

	entry := env.mustCreate(t, `{"date":"2024-03-15","category":"Coding","durationHours":2,"note":"morning"}`)
	assert.Equal(t, "Coding", entry.CategoryName)
	assert.Equal(t, 2.0, getDaily(t, env, "2024-03-15").DailyTotalHours)
	assert.Equal(t, 2.0, getWeekly(t, env, "2024-03-15").WeeklyTotalHours)
}

func TestTotalsCacheInvalidateCoversDayAndWeek(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := newTotalsCache(client, time.Minute, logger.Discard())
	ctx := context.Background()

	cache.set(ctx, "totals:daily:2024-03-15", DailyTotals{DailyTotalHours: 1})
	cache.set(ctx, "totals:daily:2024-03-14", DailyTotals{DailyTotalHours: 2})
	cache.set(ctx, "totals:weekly:2024-03-11", WeeklyTotals{WeeklyTotalHours: 3})

	cache.invalidate(ctx, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	assert.False(t, mr.Exists("totals:daily:2024-03-15"))
	assert.False(t, mr.Exists("totals:weekly:2024-03-11"))
	assert.True(t, mr.Exists("totals:daily:2024-03-14"))

	var got DailyTotals
	assert.True(t, cache.get(ctx, cachePeriodDaily, "totals:daily:2024-03-14", &got))
	assert.Equal(t, 2.0, got.DailyTotalHours)
}

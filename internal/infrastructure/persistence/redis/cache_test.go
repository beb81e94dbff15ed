package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := NewCacheFromClient(client)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func testAssessment(studentID string, level risk.RiskLevel, score float64) *risk.Assessment {
	return &risk.Assessment{
		ID:                          "assessment-" + studentID,
		StudentID:                   studentID,
		RiskLevel:                   level,
		RiskScore:                   score,
		Factors:                     risk.FactorSet{Academic: 70, Attendance: 55, Engagement: 60, Financial: 40, Social: 50},
		Recommendations:             []string{"Schedule additional tutoring sessions"},
		PredictedDropoutProbability: score,
		TrendDirection:              risk.TrendStable,
		CreatedAt:                   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, cache.Set(ctx, "k", payload{Name: "alpha", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "alpha", Count: 3}, got)
}

func TestCache_GetMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	var got map[string]string
	err := cache.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_EmptyKeyRejected(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	assert.ErrorIs(t, cache.Set(ctx, "", "v", time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, cache.Get(ctx, "", nil), ErrCacheKeyEmpty)

	_, err := cache.GetString(ctx, "")
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)
}

func TestCache_TTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetString(ctx, "short", "lived", 30*time.Second))
	mr.FastForward(time.Minute)

	_, err := cache.GetString(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetString(ctx, "a", "1", time.Minute))
	require.NoError(t, cache.SetString(ctx, "b", "2", time.Minute))
	require.NoError(t, cache.Delete(ctx, "a", "b"))

	exists, err := cache.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCache_SortedSetRanking(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.ZAdd(ctx, "rank", "s1", 72))
	require.NoError(t, cache.ZAdd(ctx, "rank", "s2", 91))
	require.NoError(t, cache.ZAdd(ctx, "rank", "s3", 65))

	scores, order, err := cache.ZRevRangeWithScores(ctx, "rank", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, order)
	assert.Equal(t, 91.0, scores["s2"])

	require.NoError(t, cache.ZRem(ctx, "rank", "s2"))
	_, order, err = cache.ZRevRangeWithScores(ctx, "rank", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3"}, order)
}

func TestAssessmentCache_SetAndGetLatest(t *testing.T) {
	cache, _ := newTestCache(t)
	ac := NewAssessmentCache(cache)
	ctx := context.Background()

	a := testAssessment("student-1", risk.LevelModerate, 48)
	require.NoError(t, ac.SetLatest(ctx, a))

	got, err := ac.GetLatest(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, risk.LevelModerate, got.RiskLevel)
	assert.Equal(t, 48.0, got.RiskScore)
	assert.Equal(t, a.Factors, got.Factors)
}

func TestAssessmentCache_GetLatestMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	ac := NewAssessmentCache(cache)

	_, err := ac.GetLatest(context.Background(), "student-unknown")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestAssessmentCache_HighRiskRankingTracksLevel(t *testing.T) {
	cache, _ := newTestCache(t)
	ac := NewAssessmentCache(cache)
	ctx := context.Background()

	require.NoError(t, ac.SetLatest(ctx, testAssessment("student-1", risk.LevelHigh, 82)))
	require.NoError(t, ac.SetLatest(ctx, testAssessment("student-2", risk.LevelHigh, 91)))
	require.NoError(t, ac.SetLatest(ctx, testAssessment("student-3", risk.LevelLow, 12)))

	ids, scores, err := ac.TopHighRisk(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"student-2", "student-1"}, ids)
	assert.Equal(t, 91.0, scores["student-2"])

	// An improved reassessment drops the student from the ranking.
	require.NoError(t, ac.SetLatest(ctx, testAssessment("student-2", risk.LevelModerate, 44)))

	ids, _, err = ac.TopHighRisk(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"student-1"}, ids)
}

func TestAssessmentCache_InvalidateOverview(t *testing.T) {
	cache, _ := newTestCache(t)
	ac := NewAssessmentCache(cache)
	ctx := context.Background()

	require.NoError(t, cache.SetString(ctx, OverviewKey("statistics"), "{}", time.Minute))
	require.NoError(t, cache.SetString(ctx, OverviewKey("high_risk"), "{}", time.Minute))

	require.NoError(t, ac.InvalidateOverview(ctx))

	exists, err := cache.Exists(ctx, OverviewKey("statistics"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAssessmentCache_Evict(t *testing.T) {
	cache, _ := newTestCache(t)
	ac := NewAssessmentCache(cache)
	ctx := context.Background()

	require.NoError(t, ac.SetLatest(ctx, testAssessment("student-1", risk.LevelHigh, 82)))
	require.NoError(t, ac.Evict(ctx, "student-1"))

	_, err := ac.GetLatest(ctx, "student-1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	ids, _, err := ac.TopHighRisk(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

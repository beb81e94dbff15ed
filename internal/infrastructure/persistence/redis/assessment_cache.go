package redis

import (
	"context"

	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT CACHE
// Serves hot dashboard reads: the freshest assessment per student and a
// sorted set ranking high-risk students by score.
// ══════════════════════════════════════════════════════════════════════════════

// Overview cache entries dropped whenever any assessment changes.
var overviewNames = []string{"statistics", "high_risk"}

// AssessmentCache caches the latest assessment per student.
type AssessmentCache struct {
	cache *Cache
}

// NewAssessmentCache creates a new AssessmentCache.
func NewAssessmentCache(cache *Cache) *AssessmentCache {
	return &AssessmentCache{cache: cache}
}

// SetLatest caches the freshest assessment for a student and keeps the
// high-risk ranking in sync.
func (c *AssessmentCache) SetLatest(ctx context.Context, a *risk.Assessment) error {
	if a == nil || a.StudentID == "" {
		return shared.ErrInvalidInput
	}

	if err := c.cache.Set(ctx, AssessmentKey(a.StudentID), a, TTLLatestAssessment); err != nil {
		return err
	}

	if a.RiskLevel == risk.LevelHigh {
		return c.cache.ZAdd(ctx, KeyHighRisk, a.StudentID, a.RiskScore)
	}
	return c.cache.ZRem(ctx, KeyHighRisk, a.StudentID)
}

// GetLatest returns the cached latest assessment for a student, or
// ErrCacheMiss when it has expired or was never set.
func (c *AssessmentCache) GetLatest(ctx context.Context, studentID string) (*risk.Assessment, error) {
	if studentID == "" {
		return nil, shared.ErrInvalidInput
	}

	var a risk.Assessment
	if err := c.cache.Get(ctx, AssessmentKey(studentID), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// InvalidateOverview drops the aggregated dashboard payloads.
func (c *AssessmentCache) InvalidateOverview(ctx context.Context) error {
	keys := make([]string, len(overviewNames))
	for i, name := range overviewNames {
		keys[i] = OverviewKey(name)
	}
	return c.cache.Delete(ctx, keys...)
}

// Evict removes a student's cached assessment and their high-risk
// ranking entry. Called on student deletion.
func (c *AssessmentCache) Evict(ctx context.Context, studentID string) error {
	if studentID == "" {
		return shared.ErrInvalidInput
	}

	if err := c.cache.Delete(ctx, AssessmentKey(studentID)); err != nil {
		return err
	}
	return c.cache.ZRem(ctx, KeyHighRisk, studentID)
}

// TopHighRisk returns up to count student IDs from the high-risk
// ranking, worst first, with their scores.
func (c *AssessmentCache) TopHighRisk(ctx context.Context, count int64) ([]string, map[string]float64, error) {
	if count <= 0 {
		count = 10
	}
	scores, order, err := c.cache.ZRevRangeWithScores(ctx, KeyHighRisk, count)
	if err != nil {
		return nil, nil, err
	}
	return order, scores, nil
}

package risk

import "math"

// ══════════════════════════════════════════════════════════════════════════════
// TEMPORAL TREND ANALYZER
// Velocity and acceleration of a student's risk score over recent history,
// plus the adjustment factor applied to the ensemble score. History is
// supplied by the caller, most recent first; nothing is stored here.
// ══════════════════════════════════════════════════════════════════════════════

// Trend classifies risk-score movement over recent history. Lower score
// means lower risk, so a falling score is an improving trend.
type Trend string

const (
	// TrendImproving - the risk score is dropping.
	TrendImproving Trend = "improving"
	// TrendStable - the risk score is holding steady.
	TrendStable Trend = "stable"
	// TrendDeclining - the risk score is rising.
	TrendDeclining Trend = "declining"
	// TrendInsufficientData - not enough history to classify.
	TrendInsufficientData Trend = "insufficient_data"
)

// IsValid checks that the trend is one of the known values.
func (t Trend) IsValid() bool {
	switch t {
	case TrendImproving, TrendStable, TrendDeclining, TrendInsufficientData:
		return true
	default:
		return false
	}
}

// Velocity band: movement within ±5 points counts as stable.
const trendVelocityBand = 5.0

// Confidence scaling: a velocity of 10 points maps to full confidence.
const trendConfidenceScale = 10.0

// Temporal adjustment of the ensemble score.
const (
	temporalBoostPerConfidence = 0.005
	temporalDampenFloor        = 0.8
)

// TemporalTrend describes the movement of a student's risk score.
// Computed fresh from caller-supplied history on every invocation.
type TemporalTrend struct {
	// Velocity is the score delta between the two latest history points.
	Velocity float64

	// Acceleration is the change in velocity, when a third point exists.
	Acceleration float64

	// Trend is the classified direction.
	Trend Trend

	// Confidence (0-100) grows with the magnitude of the movement.
	Confidence float64
}

// AnalyzeTrend computes the temporal trend from an ordered slice of prior
// risk scores, most recent first. Fewer than two points yields
// TrendInsufficientData with zero velocity and confidence.
func AnalyzeTrend(history []float64) TemporalTrend {
	if len(history) < 2 {
		return TemporalTrend{Trend: TrendInsufficientData}
	}

	velocity := history[0] - history[1]

	acceleration := 0.0
	if len(history) >= 3 {
		prevVelocity := history[1] - history[2]
		acceleration = velocity - prevVelocity
	}

	trend := TrendStable
	if velocity < -trendVelocityBand {
		trend = TrendImproving
	} else if velocity > trendVelocityBand {
		trend = TrendDeclining
	}

	return TemporalTrend{
		Velocity:     velocity,
		Acceleration: acceleration,
		Trend:        trend,
		Confidence:   math.Min(100, math.Abs(velocity)/trendConfidenceScale*100),
	}
}

// Adjustment returns the multiplier the trend applies to an ensemble score:
// a declining student's score is boosted upward, an improving student's is
// dampened (never below 80% of the original), everything else passes
// through unchanged.
func (t TemporalTrend) Adjustment() float64 {
	switch t.Trend {
	case TrendDeclining:
		return 1 + t.Confidence*temporalBoostPerConfidence
	case TrendImproving:
		return math.Max(temporalDampenFloor, 1-t.Confidence*temporalBoostPerConfidence)
	default:
		return 1
	}
}

// Adjust applies the trend adjustment to a score, keeping the result within
// the canonical scale.
func (t TemporalTrend) Adjust(score float64) float64 {
	return math.Min(100, score*t.Adjustment())
}

package risk

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// RISK ASSESSMENT
// The persisted output record of one full engine run, plus the Assess
// orchestration that produces it. Assessment history is an append-only log
// per student; records are never mutated after creation.
// ══════════════════════════════════════════════════════════════════════════════

// Assessment is one computed risk assessment for a student. ID and
// CreatedAt are assigned by the caller when the record is persisted; the
// engine itself never touches a clock or an ID generator.
type Assessment struct {
	// ID is the internal unique identifier (UUID in string form).
	ID string

	// StudentID identifies the assessed student.
	StudentID string

	// RiskLevel is the final classification.
	RiskLevel RiskLevel

	// RiskScore is the final ensemble score after temporal adjustment,
	// in [0,100].
	RiskScore float64

	// Factors are the primary (combined) algorithm's contributing
	// sub-scores.
	Factors FactorSet

	// Recommendations are the advisory strings, in rule-table order.
	Recommendations []string

	// PredictedDropoutProbability equals RiskScore in this design.
	PredictedDropoutProbability float64

	// TrendDirection classifies the movement against prior assessments.
	TrendDirection Trend

	// PreviousScore is the risk score of the immediately preceding
	// assessment, nil for a student's first assessment.
	PreviousScore *float64

	// CreatedAt is when the record was persisted.
	CreatedAt time.Time
}

// Assess runs the full engine for one student: all four algorithms, the
// weighted ensemble, the temporal adjustment and the recommendation rules.
// history must be ordered most recent first; it may be empty.
//
// The returned assessment has no ID or CreatedAt - persistence concerns
// belong to the caller.
func Assess(studentID string, m StudentMetrics, history []float64) *Assessment {
	ruleBased := ComputeRuleBased(m)
	mlBased := ComputeMLBased(m)
	holistic := ComputeHolistic(m)
	combined := ComputeCombined(m)

	ensemble := CombineEnsemble(ruleBased, mlBased, holistic, combined, DefaultEnsembleWeights())
	trend := AnalyzeTrend(history)
	score := trend.Adjust(ensemble.Score)

	recommendations := Recommendations(RecommendationInput{
		Factors:            combined.Factors,
		CompoundMultiplier: combined.CompoundMultiplier,
		Trend:              trend.Trend,
		StdDev:             ensemble.StdDev,
	})

	assessment := &Assessment{
		StudentID:                   studentID,
		RiskLevel:                   classifyLevel(score, combinedLowBelow, combinedModerateBelow),
		RiskScore:                   score,
		Factors:                     combined.Factors,
		Recommendations:             recommendations,
		PredictedDropoutProbability: score,
		TrendDirection:              trendDirection(trend, score, history),
	}
	if len(history) > 0 {
		prev := history[0]
		assessment.PreviousScore = &prev
	}
	return assessment
}

// trendDirection picks the persisted trend label. With two or more history
// points the temporal analyzer's classification is authoritative. With
// exactly one prior score the new score is compared against it directly
// using the same ±5 band, so a student's second assessment already carries
// a meaningful direction. A first assessment is recorded as stable.
func trendDirection(trend TemporalTrend, score float64, history []float64) Trend {
	if trend.Trend != TrendInsufficientData {
		return trend.Trend
	}
	if len(history) == 1 {
		delta := score - history[0]
		if delta < -trendVelocityBand {
			return TrendImproving
		}
		if delta > trendVelocityBand {
			return TrendDeclining
		}
	}
	return TrendStable
}

// Scores extracts the risk scores from an assessment history slice,
// preserving order. Convenience for feeding AnalyzeTrend.
func Scores(history []*Assessment) []float64 {
	scores := make([]float64, len(history))
	for i, a := range history {
		scores[i] = a.RiskScore
	}
	return scores
}

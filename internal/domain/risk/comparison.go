package risk

import "math"

// ══════════════════════════════════════════════════════════════════════════════
// ALGORITHM COMPARISON
// Side-by-side algorithm outputs plus summary statistics for the dashboard
// comparison view. Two paths exist: the classic three-algorithm comparison
// (rule-based vs ML vs holistic, agreement rated on raw variance) and the
// full four-algorithm view (agreement rated on standard deviation).
// ══════════════════════════════════════════════════════════════════════════════

// Comparison recommendation texts by agreement level.
const (
	comparisonAgreeHigh = "All algorithms agree - the assessment is reliable and can drive intervention planning directly"
	comparisonAgreeMod  = "Algorithms broadly agree - treat the assessment as directional and verify the dominant risk factors"
	comparisonAgreeLow  = "Algorithms diverge - review the individual factor breakdowns before acting on the aggregate score"
)

// Comparison is the payload assembled for the algorithm comparison view.
// It is computed on demand and not persisted.
type Comparison struct {
	// Results holds one entry per algorithm, in computation order.
	Results []AlgorithmResult

	// Average is the plain mean of the algorithm scores.
	Average float64

	// Variance is the mean squared deviation from Average.
	Variance float64

	// StdDev is the square root of Variance.
	StdDev float64

	// Agreement rates how much the algorithms concur.
	Agreement Agreement

	// Recommendation is a one-line reading guide for the agreement level.
	Recommendation string
}

// CompareThree runs the rule-based, ML-inspired and holistic algorithms and
// summarizes their spread. Agreement is rated on raw variance, preserving
// the thresholds of the original three-way dashboard view.
func CompareThree(m StudentMetrics) Comparison {
	results := []AlgorithmResult{
		ComputeRuleBased(m),
		ComputeMLBased(m),
		ComputeHolistic(m),
	}
	c := summarize(results)
	c.Agreement = AgreementFromVariance(c.Variance)
	c.Recommendation = comparisonRecommendation(c.Agreement)
	return c
}

// CompareAll runs all four algorithms and summarizes their spread.
// Agreement is rated on standard deviation like the ensemble combiner.
func CompareAll(m StudentMetrics) Comparison {
	results := []AlgorithmResult{
		ComputeRuleBased(m),
		ComputeMLBased(m),
		ComputeHolistic(m),
		ComputeCombined(m),
	}
	c := summarize(results)
	c.Agreement = AgreementFromStdDev(c.StdDev)
	c.Recommendation = comparisonRecommendation(c.Agreement)
	return c
}

// summarize computes mean, variance and stdDev over the result scores.
func summarize(results []AlgorithmResult) Comparison {
	mean := 0.0
	for _, r := range results {
		mean += r.Score
	}
	mean /= float64(len(results))

	variance := 0.0
	for _, r := range results {
		variance += (r.Score - mean) * (r.Score - mean)
	}
	variance /= float64(len(results))

	return Comparison{
		Results:  results,
		Average:  mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
	}
}

// comparisonRecommendation maps an agreement level to its reading guide.
func comparisonRecommendation(a Agreement) string {
	switch a {
	case AgreementHigh:
		return comparisonAgreeHigh
	case AgreementModerate:
		return comparisonAgreeMod
	default:
		return comparisonAgreeLow
	}
}

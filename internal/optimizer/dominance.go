package optimizer

import "math"

// DominanceConfig tunes when two strategies are considered equivalent or one
// strictly better.
type DominanceConfig struct {
	// OutputBand is the fraction of output a dominating strategy may give up
	// and still win on time and fees.
	OutputBand float64
	// Equality tolerances for the identical-strategy check.
	TimeToleranceSecs  float64
	FeesToleranceUSD   float64
	OutputToleranceUSD float64
}

// Recommendation is the outcome of comparing the two strategies. Best is nil
// only when both strategies exist and neither dominates.
type Recommendation struct {
	Best   *DepositStrategy
	Reason string
}

// Compare decides whether to present one strategy or both. Nil strategies are
// handled: a single surviving strategy is trivially best.
func Compare(fastest, cheapest *DepositStrategy, cfg DominanceConfig) Recommendation {
	switch {
	case fastest == nil && cheapest == nil:
		return Recommendation{}
	case cheapest == nil:
		return Recommendation{Best: fastest, Reason: "only viable strategy"}
	case fastest == nil:
		return Recommendation{Best: cheapest, Reason: "only viable strategy"}
	}

	if identical(fastest, cheapest, cfg) {
		return Recommendation{Best: fastest, Reason: "strategies identical"}
	}

	// An efficiency-first pick that is also strictly faster leaves nothing
	// for the time-first pick to offer.
	if cheapest.TotalTimeSeconds < fastest.TotalTimeSeconds &&
		cheapest.TotalFeesUSD <= fastest.TotalFeesUSD {
		return Recommendation{Best: cheapest, Reason: "cheapest is also faster"}
	}

	if dominates(fastest, cheapest, cfg.OutputBand) {
		return Recommendation{Best: fastest, Reason: "fastest dominates"}
	}
	if dominates(cheapest, fastest, cfg.OutputBand) {
		return Recommendation{Best: cheapest, Reason: "cheapest dominates"}
	}
	return Recommendation{Reason: "genuine trade-off"}
}

// identical reports whether both strategies allocate the same legs and land
// within tolerance on every total.
func identical(a, b *DepositStrategy, cfg DominanceConfig) bool {
	if len(a.Bridges) != len(b.Bridges) {
		return false
	}
	legs := make(map[string]int, len(a.Bridges))
	for _, alloc := range a.Bridges {
		legs[alloc.LegKey()]++
	}
	for _, alloc := range b.Bridges {
		legs[alloc.LegKey()]--
		if legs[alloc.LegKey()] < 0 {
			return false
		}
	}
	return math.Abs(a.TotalTimeSeconds-b.TotalTimeSeconds) < cfg.TimeToleranceSecs &&
		math.Abs(a.TotalFeesUSD-b.TotalFeesUSD) < cfg.FeesToleranceUSD &&
		math.Abs(a.TotalOutputUSD-b.TotalOutputUSD) < cfg.OutputToleranceUSD
}

// dominates reports whether a beats b on time and fees while delivering output
// within the acceptance band of b's.
func dominates(a, b *DepositStrategy, outputBand float64) bool {
	return a.TotalTimeSeconds <= b.TotalTimeSeconds &&
		a.TotalFeesUSD <= b.TotalFeesUSD &&
		a.TotalOutputUSD >= (1-outputBand)*b.TotalOutputUSD
}

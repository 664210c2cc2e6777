package scoring

import "math"

// ExpectedRank predicts where participant selfIdx should finish given the
// full rating pool, using the pairwise Elo win probability: every opponent
// expected to beat them adds (close to) one rank.
func ExpectedRank(selfIdx int, ratings []int) float64 {
	expected := 1.0
	self := float64(ratings[selfIdx])
	for i, other := range ratings {
		if i == selfIdx {
			continue
		}
		expected += 1.0 / (1.0 + math.Pow(10, (self-float64(other))/400.0))
	}
	return expected
}

// KFactor sizes the per-contest rating step. Inexperienced users converge
// fast; veterans move slowly. Volatility scales the step around its 350
// baseline.
func KFactor(contestsParticipated int, volatility float64) float64 {
	var k float64
	switch {
	case contestsParticipated <= 5:
		k = 200
	case contestsParticipated <= 10:
		k = 100
	case contestsParticipated <= 20:
		k = 64
	default:
		k = 32
	}
	return k * (volatility / BaseVolatility)
}

// RatingDelta converts the gap between expected and actual rank into a
// bounded rating change. Finishing better than expected is positive.
func RatingDelta(k, expectedRank float64, actualRank int) int {
	delta := int(math.Round(k * (expectedRank - float64(actualRank)) / expectedRank))
	if delta > MaxRatingSwing {
		return MaxRatingSwing
	}
	if delta < -MaxRatingSwing {
		return -MaxRatingSwing
	}
	return delta
}

// ApplyDelta floors the updated rating at zero.
func ApplyDelta(oldRating, delta int) int {
	newRating := oldRating + delta
	if newRating < 0 {
		return 0
	}
	return newRating
}

// NextVolatility grows with the size of the swing and decays toward the
// baseline, clamped to [50, 500].
func NextVolatility(oldVolatility float64, delta int) float64 {
	v := oldVolatility + math.Abs(float64(delta))*swingWeight
	v = v*volatilityDecay + BaseVolatility*(1-volatilityDecay)
	return math.Min(MaxVolatility, math.Max(MinVolatility, v))
}

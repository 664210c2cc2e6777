package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contest-ranking/internal/domain"
)

func TestExpectedRankSymmetricPool(t *testing.T) {
	ratings := []int{1500, 1500, 1500}
	for i := range ratings {
		assert.InDelta(t, 2.0, ExpectedRank(i, ratings), 1e-9)
	}
}

func TestExpectedRankFavorsHigherRating(t *testing.T) {
	ratings := []int{2000, 1500, 1000}
	top := ExpectedRank(0, ratings)
	mid := ExpectedRank(1, ratings)
	bottom := ExpectedRank(2, ratings)

	assert.Less(t, top, mid)
	assert.Less(t, mid, bottom)
	assert.Greater(t, top, 1.0)
	assert.Less(t, bottom, 3.0)
}

func TestKFactorByExperience(t *testing.T) {
	cases := []struct {
		contests int
		want     float64
	}{
		{0, 200}, {5, 200}, {6, 100}, {10, 100}, {11, 64}, {20, 64}, {21, 32}, {100, 32},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, KFactor(tc.contests, BaseVolatility), 1e-9, "contests=%d", tc.contests)
	}

	// Volatility scales the step linearly around the baseline.
	assert.InDelta(t, 400, KFactor(0, 2*BaseVolatility), 1e-9)
	assert.InDelta(t, 100, KFactor(0, BaseVolatility/2), 1e-9)
}

func TestRatingDeltaSignAndBounds(t *testing.T) {
	assert.Positive(t, RatingDelta(200, 2.0, 1), "finishing above expectation gains rating")
	assert.Negative(t, RatingDelta(200, 2.0, 3), "finishing below expectation loses rating")
	assert.Equal(t, 0, RatingDelta(200, 2.0, 2))

	assert.Equal(t, MaxRatingSwing, RatingDelta(100000, 50.0, 1))
	assert.Equal(t, -MaxRatingSwing, RatingDelta(100000, 1.0, 500))
}

func TestApplyDeltaFloorsAtZero(t *testing.T) {
	assert.Equal(t, 1450, ApplyDelta(1500, -50))
	assert.Equal(t, 0, ApplyDelta(100, -300))
}

func TestNextVolatilityDecaysTowardBaseline(t *testing.T) {
	// No swing: volatility drifts toward 350 from both sides.
	assert.Less(t, NextVolatility(500, 0), 500.0)
	assert.Greater(t, NextVolatility(100, 0), 100.0)
	assert.InDelta(t, BaseVolatility, NextVolatility(BaseVolatility, 0), 1e-9)

	// A large swing raises it, within the cap.
	assert.Greater(t, NextVolatility(BaseVolatility, 300), BaseVolatility)
	assert.LessOrEqual(t, NextVolatility(MaxVolatility, 300), MaxVolatility)
	assert.GreaterOrEqual(t, NextVolatility(0, 0), MinVolatility)
}

func TestTierBands(t *testing.T) {
	cases := []struct {
		rating int
		want   domain.RankTier
	}{
		{0, domain.TierNewbie},
		{1199, domain.TierNewbie},
		{1200, domain.TierPupil},
		{1399, domain.TierPupil},
		{1400, domain.TierSpecialist},
		{1599, domain.TierSpecialist},
		{1600, domain.TierExpert},
		{1899, domain.TierExpert},
		{1900, domain.TierCandidateMaster},
		{2100, domain.TierMaster},
		{2300, domain.TierInternationalMaster},
		{2400, domain.TierGrandmaster},
		{2600, domain.TierInternationalGrandmaster},
		{3000, domain.TierLegendaryGrandmaster},
		{3500, domain.TierLegendaryGrandmaster},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.TierForRating(tc.rating), "rating=%d", tc.rating)
	}

	assert.Equal(t, domain.TierMaster, domain.MaxTier(domain.TierMaster, domain.TierPupil))
	assert.Equal(t, domain.TierMaster, domain.MaxTier(domain.TierPupil, domain.TierMaster))
}

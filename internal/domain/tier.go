package domain

type RankTier string

const (
	TierNewbie                   RankTier = "newbie"
	TierPupil                    RankTier = "pupil"
	TierSpecialist               RankTier = "specialist"
	TierExpert                   RankTier = "expert"
	TierCandidateMaster          RankTier = "candidate_master"
	TierMaster                   RankTier = "master"
	TierInternationalMaster      RankTier = "international_master"
	TierGrandmaster              RankTier = "grandmaster"
	TierInternationalGrandmaster RankTier = "international_grandmaster"
	TierLegendaryGrandmaster     RankTier = "legendary_grandmaster"
)

var tierOrder = map[RankTier]int{
	TierNewbie:                   0,
	TierPupil:                    1,
	TierSpecialist:               2,
	TierExpert:                   3,
	TierCandidateMaster:          4,
	TierMaster:                   5,
	TierInternationalMaster:      6,
	TierGrandmaster:              7,
	TierInternationalGrandmaster: 8,
	TierLegendaryGrandmaster:     9,
}

// TierForRating maps a rating to its display band.
func TierForRating(rating int) RankTier {
	switch {
	case rating < 1200:
		return TierNewbie
	case rating < 1400:
		return TierPupil
	case rating < 1600:
		return TierSpecialist
	case rating < 1900:
		return TierExpert
	case rating < 2100:
		return TierCandidateMaster
	case rating < 2300:
		return TierMaster
	case rating < 2400:
		return TierInternationalMaster
	case rating < 2600:
		return TierGrandmaster
	case rating < 3000:
		return TierInternationalGrandmaster
	default:
		return TierLegendaryGrandmaster
	}
}

// MaxTier returns the higher of two tiers; max_rank_tier only ever moves up.
func MaxTier(a, b RankTier) RankTier {
	if tierOrder[b] > tierOrder[a] {
		return b
	}
	return a
}

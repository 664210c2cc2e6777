package scoring

const (
	// InitialRating is assigned the first time a user finishes a rated
	// contest.
	InitialRating = 1500

	// BaseVolatility is the damping baseline volatility decays toward.
	BaseVolatility = 350.0

	MinVolatility = 50.0
	MaxVolatility = 500.0

	// MaxRatingSwing clamps a single contest's rating delta.
	MaxRatingSwing = 300

	// DefaultProblemPoints is the OI fallback when a contest problem has no
	// configured point value.
	DefaultProblemPoints = 100

	volatilityDecay = 0.95
	swingWeight     = 0.5
)

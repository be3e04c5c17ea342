package domain

// Category identifies one scorable kind of real-world outcome.
type Category string

const (
	// Challenge categories.
	CategoryTribeReward        Category = "TRIBE_REWARD"
	CategoryIndividualReward   Category = "INDIVIDUAL_REWARD"
	CategoryTribeImmunity      Category = "TRIBE_IMMUNITY"
	CategoryIndividualImmunity Category = "INDIVIDUAL_IMMUNITY"
	CategoryImmunitySecond     Category = "IMMUNITY_SECOND"
	CategoryIdolFound          Category = "IDOL_FOUND"
	CategoryIdolPlayed         Category = "IDOL_PLAYED"
	CategoryAdvantageFound     Category = "ADVANTAGE_FOUND"
	CategoryEpisodeTitle       Category = "EPISODE_TITLE"

	// Milestone categories.
	CategoryMadeMerge  Category = "MADE_MERGE"
	CategoryFinalThree Category = "FINAL_THREE"
	CategoryWinner     Category = "WINNER"

	// CategoryVotedOutPrediction records a team's earned vote-prediction
	// points as an auditable ledger event. The recalculation engine sources
	// the prediction subtotal from the prediction tables, not from these
	// events, so they must never be summed into a bucket twice.
	CategoryVotedOutPrediction Category = "VOTED_OUT_PREDICTION"

	// CategorySeasonPrediction is the point source for graded one-time
	// season predictions.
	CategorySeasonPrediction Category = "SEASON_PREDICTION"
)

// Bucket is the subtotal a category rolls up into.
type Bucket string

const (
	BucketChallenge    Bucket = "CHALLENGE"
	BucketMilestone    Bucket = "MILESTONE"
	BucketPrediction   Bucket = "PREDICTION"
	BucketUnclassified Bucket = "UNCLASSIFIED"
)

// defaultPoints is the platform default point table. Leagues override
// individual categories through their scoring config.
var defaultPoints = map[Category]int{
	CategoryTribeReward:        1,
	CategoryIndividualReward:   2,
	CategoryTribeImmunity:      1,
	CategoryIndividualImmunity: 3,
	CategoryImmunitySecond:     1,
	CategoryIdolFound:          2,
	CategoryIdolPlayed:         2,
	CategoryAdvantageFound:     1,
	CategoryEpisodeTitle:       1,
	CategoryMadeMerge:          2,
	CategoryFinalThree:         3,
	CategoryWinner:             5,
	CategorySeasonPrediction:   5,
}

// classification is the fixed category-to-bucket mapping.
var classification = map[Category]Bucket{
	CategoryTribeReward:        BucketChallenge,
	CategoryIndividualReward:   BucketChallenge,
	CategoryTribeImmunity:      BucketChallenge,
	CategoryIndividualImmunity: BucketChallenge,
	CategoryImmunitySecond:     BucketChallenge,
	CategoryIdolFound:          BucketChallenge,
	CategoryIdolPlayed:         BucketChallenge,
	CategoryAdvantageFound:     BucketChallenge,
	CategoryEpisodeTitle:       BucketChallenge,
	CategoryMadeMerge:          BucketMilestone,
	CategoryFinalThree:         BucketMilestone,
	CategoryWinner:             BucketMilestone,
	CategoryVotedOutPrediction: BucketPrediction,
	CategorySeasonPrediction:   BucketPrediction,
}

// ResolvePoints returns the effective point value for a category: league
// override first, then the platform default, then zero for unknown
// categories. Pure function, no error cases.
func ResolvePoints(config map[Category]int, category Category) int {
	if config != nil {
		if v, ok := config[category]; ok {
			return v
		}
	}
	return defaultPoints[category]
}

// Classify partitions a category into its subtotal bucket. Categories absent
// from the mapping land in BucketUnclassified so the recalculation engine can
// route them explicitly instead of dropping them.
func Classify(category Category) Bucket {
	if b, ok := classification[category]; ok {
		return b
	}
	return BucketUnclassified
}

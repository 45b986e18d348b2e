package scoring

import (
	"math"

	"scms/repository"
)

// GradeForScore maps a normalized 0-5 rating to a letter grade using fixed,
// inclusive lower bounds.
func GradeForScore(score float64) repository.LetterGrade {
	switch {
	case score >= 4.5:
		return repository.LetterGradeA
	case score >= 3.5:
		return repository.LetterGradeB
	case score >= 2.5:
		return repository.LetterGradeC
	case score >= 1.5:
		return repository.LetterGradeD
	default:
		return repository.LetterGradeF
	}
}

// ComputeAggregate derives the subcontractor-level rating aggregate from its
// current set of reviews. Every response of every review contributes
// score * questionWeight; only the question weight is applied, the category
// weight deliberately is not. Returns ok=false when there are no reviews, in
// which case the caller must leave the persisted aggregate untouched.
func ComputeAggregate(reviews []*repository.Review) (*repository.RatingAggregate, bool) {
	if len(reviews) == 0 {
		return nil, false
	}

	totalWeightedScore := 0.0
	totalWeight := 0.0
	for _, review := range reviews {
		for _, response := range review.Responses {
			weight := questionWeight(response)
			totalWeightedScore += float64(response.Score) * weight
			totalWeight += weight
		}
	}

	averageScore := 0.0
	if totalWeight > 0 {
		averageScore = totalWeightedScore / totalWeight
	}
	normalizedScore := math.Min(math.Max(averageScore, 0), 5)

	return &repository.RatingAggregate{
		AverageRating: normalizedScore,
		LetterGrade:   GradeForScore(normalizedScore),
		ReviewCount:   len(reviews),
	}, true
}

// OverallRating computes the 1-5 integer rating of a single review from its
// own weighted responses. Defaults to 3 when there is nothing to average.
func OverallRating(responses []*repository.ReviewResponse) int {
	totalWeightedScore := 0.0
	totalWeight := 0.0
	for _, response := range responses {
		weight := questionWeight(response)
		totalWeightedScore += float64(response.Score) * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 3
	}
	rating := int(math.Round(totalWeightedScore / totalWeight))
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}

func questionWeight(response *repository.ReviewResponse) float64 {
	if response.Question == nil || response.Question.Weight == 0 {
		return 1
	}
	return response.Question.Weight
}

package scoring

import (
	"testing"

	"scms/repository"

	"github.com/stretchr/testify/assert"
)

func response(score int, weight float64) *repository.ReviewResponse {
	return &repository.ReviewResponse{
		Score:    score,
		Question: &repository.Question{Weight: weight},
	}
}

func TestGradeForScore(t *testing.T) {
	assert.Equal(t, repository.LetterGradeA, GradeForScore(5.0))
	assert.Equal(t, repository.LetterGradeA, GradeForScore(4.5))
	assert.Equal(t, repository.LetterGradeB, GradeForScore(4.49))
	assert.Equal(t, repository.LetterGradeB, GradeForScore(3.5))
	assert.Equal(t, repository.LetterGradeC, GradeForScore(3.49))
	assert.Equal(t, repository.LetterGradeC, GradeForScore(2.5))
	assert.Equal(t, repository.LetterGradeD, GradeForScore(2.49))
	assert.Equal(t, repository.LetterGradeD, GradeForScore(1.5))
	assert.Equal(t, repository.LetterGradeF, GradeForScore(1.49))
	assert.Equal(t, repository.LetterGradeF, GradeForScore(0))
}

func TestComputeAggregateWeightedAverage(t *testing.T) {
	reviews := []*repository.Review{
		{Responses: []*repository.ReviewResponse{
			response(5, 2),
			response(3, 1),
		}},
	}

	aggregate, ok := ComputeAggregate(reviews)
	assert.True(t, ok)
	assert.InDelta(t, 13.0/3.0, aggregate.AverageRating, 1e-9)
	assert.Equal(t, repository.LetterGradeB, aggregate.LetterGrade)
	assert.Equal(t, 1, aggregate.ReviewCount)
}

func TestComputeAggregateSpansReviews(t *testing.T) {
	reviews := []*repository.Review{
		{Responses: []*repository.ReviewResponse{response(5, 1)}},
		{Responses: []*repository.ReviewResponse{response(2, 1)}},
		{Responses: []*repository.ReviewResponse{response(1, 1)}},
	}

	aggregate, ok := ComputeAggregate(reviews)
	assert.True(t, ok)
	assert.InDelta(t, 8.0/3.0, aggregate.AverageRating, 1e-9)
	assert.Equal(t, repository.LetterGradeC, aggregate.LetterGrade)
	assert.Equal(t, 3, aggregate.ReviewCount)
}

func TestComputeAggregateNoReviews(t *testing.T) {
	aggregate, ok := ComputeAggregate([]*repository.Review{})
	assert.False(t, ok)
	assert.Nil(t, aggregate)
}

func TestComputeAggregateMissingWeightDefaultsToOne(t *testing.T) {
	reviews := []*repository.Review{
		{Responses: []*repository.ReviewResponse{
			{Score: 4, Question: nil},
			response(2, 0),
		}},
	}

	aggregate, ok := ComputeAggregate(reviews)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, aggregate.AverageRating, 1e-9)
	assert.Equal(t, repository.LetterGradeC, aggregate.LetterGrade)
}

func TestComputeAggregateReviewWithoutResponses(t *testing.T) {
	reviews := []*repository.Review{
		{Responses: []*repository.ReviewResponse{}},
	}

	aggregate, ok := ComputeAggregate(reviews)
	assert.True(t, ok)
	assert.Equal(t, 0.0, aggregate.AverageRating)
	assert.Equal(t, repository.LetterGradeF, aggregate.LetterGrade)
	assert.Equal(t, 1, aggregate.ReviewCount)
}

func TestOverallRatingDefaultsToThree(t *testing.T) {
	assert.Equal(t, 3, OverallRating(nil))
	assert.Equal(t, 3, OverallRating([]*repository.ReviewResponse{}))
}

func TestOverallRatingRounds(t *testing.T) {
	// (5 + 4) / 2 = 4.5 rounds up
	responses := []*repository.ReviewResponse{
		response(5, 1),
		response(4, 1),
	}
	assert.Equal(t, 5, OverallRating(responses))

	// (5*1 + 3*2) / 3 = 3.67 rounds to 4
	responses = []*repository.ReviewResponse{
		response(5, 1),
		response(3, 2),
	}
	assert.Equal(t, 4, OverallRating(responses))
}

func TestOverallRatingStaysInRange(t *testing.T) {
	assert.Equal(t, 1, OverallRating([]*repository.ReviewResponse{response(1, 3)}))
	assert.Equal(t, 5, OverallRating([]*repository.ReviewResponse{response(5, 3)}))
}

package metrics

import (
	"time"

	"github.com/andresuchdata/eventdesk/backend-go/internal/domain"
)

const (
	MinScore = 1
	MaxScore = 5
)

// ValidateRating checks a submitted review before anything is mutated.
func ValidateRating(in domain.RatingInput) error {
	if in.ReviewerID == "" {
		return domain.NewValidationError("reviewer_id", "reviewer is required")
	}
	if in.Score == nil {
		return domain.NewValidationError("score", "score is required")
	}
	if *in.Score < MinScore || *in.Score > MaxScore {
		return domain.NewValidationError("score", "score must be between 1 and 5")
	}
	return nil
}

// UpsertRating records one review per reviewer. An existing entry is
// overwritten in place, keeping its position; otherwise the review is
// appended. It returns the updated list and the new mean.
func UpsertRating(ratings []domain.Rating, in domain.RatingInput, now time.Time) ([]domain.Rating, float64, error) {
	if err := ValidateRating(in); err != nil {
		return ratings, MeanRating(ratings), err
	}

	found := false
	for i := range ratings {
		if ratings[i].ReviewerID == in.ReviewerID {
			ratings[i].Score = *in.Score
			ratings[i].Comment = in.Comment
			ratings[i].CreatedAt = now
			found = true
			break
		}
	}
	if !found {
		ratings = append(ratings, domain.Rating{
			ReviewerID: in.ReviewerID,
			Score:      *in.Score,
			Comment:    in.Comment,
			CreatedAt:  now,
		})
	}

	return ratings, MeanRating(ratings), nil
}

// MeanRating is the arithmetic mean of all scores, or 0 with no ratings.
func MeanRating(ratings []domain.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	return float64(sum) / float64(len(ratings))
}

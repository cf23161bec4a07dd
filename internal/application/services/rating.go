package services

import (
	"github.com/skillswap/backend/internal/domain/entities"
	"github.com/skillswap/backend/pkg/utils"
)

// AggregateRating returns the mean rating of the feedback addressed to userID,
// rounded to one decimal, or DefaultRating when there is none.
func AggregateRating(feedback []*entities.Feedback, userID string) float64 {
	sum, n := 0, 0
	for _, f := range feedback {
		if f.ToUserID != userID {
			continue
		}
		sum += f.Rating
		n++
	}
	if n == 0 {
		return entities.DefaultRating
	}
	return utils.RoundToOneDecimal(float64(sum) / float64(n))
}

package domain

import "time"

// Validation bounds for review scores.
const (
	ReviewScoreMin = 1
	ReviewScoreMax = 5
)

// Review represents a user's review of a product. Score is an integer from
// 1 to 5 and Content is never empty.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Score     int       `json:"score"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidScore checks whether the given score is within the accepted range.
func IsValidScore(score int) bool {
	return score >= ReviewScoreMin && score <= ReviewScoreMax
}

package domain

import "time"

// Validation bounds for product fields.
const (
	ProductNameMinLen  = 3
	ProductAboutMinLen = 10
)

// Product represents a product in the shop catalog. Price is stored in
// integer cents. ReviewIDs and TotalScore are aggregate fields owned by the
// review service; nothing else writes them.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	About      string    `json:"about"`
	Price      int64     `json:"price"`
	ReviewIDs  []int64   `json:"review_ids"`
	TotalScore float64   `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MeanScore computes the aggregate score for a product from the full set of
// its current review scores. An empty set yields exactly 0.
func MeanScore(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

package entities

import "time"

// SkillCount pairs an offered skill with the number of users offering it
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Analytics is the admin dashboard summary
type Analytics struct {
	TotalUsers     int          `json:"total_users"`
	ActiveUsers    int          `json:"active_users"`
	TotalSwaps     int          `json:"total_swaps"`
	PendingSwaps   int          `json:"pending_swaps"`
	CompletedSwaps int          `json:"completed_swaps"`
	SuccessRate    float64      `json:"success_rate"`
	AverageRating  float64      `json:"average_rating"`
	TopSkills      []SkillCount `json:"top_skills"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// ActivityReport counts platform activity for one UTC day
type ActivityReport struct {
	Date           string `json:"date"`
	NewUsers       int    `json:"new_users"`
	NewSwaps       int    `json:"new_swaps"`
	CompletedSwaps int    `json:"completed_swaps"`
}

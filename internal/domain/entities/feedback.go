package entities

import "time"

const (
	MinFeedbackRating = 1
	MaxFeedbackRating = 5
)

// Feedback is a post-completion review of one swap participant by the other.
type Feedback struct {
	ID            string    `json:"id" db:"id"`
	SwapRequestID string    `json:"swap_request_id" db:"swap_request_id"`
	FromUserID    string    `json:"from_user_id" db:"from_user_id"`
	ToUserID      string    `json:"to_user_id" db:"to_user_id"`
	Rating        int       `json:"rating" db:"rating"`
	Comment       string    `json:"comment" db:"comment"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Clone returns a copy of the feedback entry
func (f *Feedback) Clone() *Feedback {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

package entities

import "time"

// AdminMessageType classifies a broadcast
type AdminMessageType string

const (
	AdminMessageInfo        AdminMessageType = "info"
	AdminMessageWarning     AdminMessageType = "warning"
	AdminMessageMaintenance AdminMessageType = "maintenance"
)

// IsValid reports whether t is a known message type
func (t AdminMessageType) IsValid() bool {
	return t == AdminMessageInfo || t == AdminMessageWarning || t == AdminMessageMaintenance
}

// AdminMessage is a platform-wide announcement
type AdminMessage struct {
	ID        string           `json:"id" db:"id"`
	Title     string           `json:"title" db:"title"`
	Content   string           `json:"content" db:"content"`
	Type      AdminMessageType `json:"type" db:"type"`
	IsActive  bool             `json:"is_active" db:"is_active"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// Clone returns a copy of the message
func (m *AdminMessage) Clone() *AdminMessage {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

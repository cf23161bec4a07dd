package entities

import (
	"strings"
	"time"
)

// Role distinguishes regular members from platform administrators
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Availability is one token of the fixed availability vocabulary
type Availability string

const (
	AvailabilityWeekdays   Availability = "Weekdays"
	AvailabilityWeekends   Availability = "Weekends"
	AvailabilityMornings   Availability = "Mornings"
	AvailabilityAfternoons Availability = "Afternoons"
	AvailabilityEvenings   Availability = "Evenings"
)

// AvailabilityOptions lists every accepted availability token in display order
var AvailabilityOptions = []Availability{
	AvailabilityWeekdays,
	AvailabilityWeekends,
	AvailabilityMornings,
	AvailabilityAfternoons,
	AvailabilityEvenings,
}

// IsValid reports whether a is part of the fixed vocabulary
func (a Availability) IsValid() bool {
	for _, opt := range AvailabilityOptions {
		if a == opt {
			return true
		}
	}
	return false
}

// DefaultRating is the rating of a user nobody has reviewed yet
const DefaultRating = 5.0

// User represents a marketplace member
type User struct {
	ID            string         `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	Email         string         `json:"email" db:"email"`
	Location      string         `json:"location,omitempty" db:"location"`
	ProfilePhoto  string         `json:"profile_photo,omitempty" db:"profile_photo"`
	SkillsOffered []string       `json:"skills_offered" db:"skills_offered"`
	SkillsWanted  []string       `json:"skills_wanted" db:"skills_wanted"`
	Availability  []Availability `json:"availability" db:"availability"`
	IsPublic      bool           `json:"is_public" db:"is_public"`
	Role          Role           `json:"role" db:"role"`
	Rating        float64        `json:"rating" db:"rating"`
	TotalSwaps    int            `json:"total_swaps" db:"total_swaps"`
	IsActive      bool           `json:"is_active" db:"is_active"`
	JoinDate      time.Time      `json:"join_date" db:"join_date"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsDiscoverable reports whether the user may appear in public search results
func (u *User) IsDiscoverable() bool {
	return u.IsPublic && u.IsActive && u.Role != RoleAdmin
}

// OffersSkill reports whether skill is in SkillsOffered, ignoring case
func (u *User) OffersSkill(skill string) bool {
	return containsFold(u.SkillsOffered, skill)
}

// HasAvailability reports whether the user lists the exact availability token
func (u *User) HasAvailability(a Availability) bool {
	for _, v := range u.Availability {
		if v == a {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.SkillsOffered = append([]string(nil), u.SkillsOffered...)
	c.SkillsWanted = append([]string(nil), u.SkillsWanted...)
	c.Availability = append([]Availability(nil), u.Availability...)
	return &c
}

// UserSummary is the public card shown next to a swap request
type UserSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Location     string  `json:"location,omitempty"`
	ProfilePhoto string  `json:"profile_photo,omitempty"`
	Rating       float64 `json:"rating"`
	TotalSwaps   int     `json:"total_swaps"`
}

// Summary projects the user onto a UserSummary
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Location:     u.Location,
		ProfilePhoto: u.ProfilePhoto,
		Rating:       u.Rating,
		TotalSwaps:   u.TotalSwaps,
	}
}

func containsFold(values []string, target string) bool {
	target = strings.TrimSpace(target)
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

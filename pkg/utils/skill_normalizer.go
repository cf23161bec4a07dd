package utils

import (
	"math"
	"strings"
)

// NormalizeSkill trims a skill name and collapses inner whitespace
func NormalizeSkill(skill string) string {
	return strings.Join(strings.Fields(skill), " ")
}

// NormalizeSkills normalizes every entry, drops empty ones and removes
// case-insensitive duplicates keeping the first spelling seen.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, raw := range skills {
		skill := NormalizeSkill(raw)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, skill)
	}
	return out
}

// ContainsFold reports whether substr is within s, ignoring case
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// RoundToOneDecimal rounds half away from zero to one decimal place
func RoundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

package cert

import (
	"fmt"
	"strings"
)

// Duration labels and prices for the fixed duration codes
const (
	DurationOneMonth  = "1 Month"
	DurationTwoMonths = "2 Months"
	DurationCustom    = "Custom"
)

// internshipRules maps free-text titles to canonical display titles by
// case-insensitive keyword match. Ordered: the first rule whose keywords all
// appear wins, so "data" never shadows an explicit "frontend".
var internshipRules = []struct {
	keywords []string
	title    string
}{
	{[]string{"frontend"}, "Frontend Developer Internship"},
	{[]string{"front-end"}, "Frontend Developer Internship"},
	{[]string{"backend"}, "Backend Developer Internship"},
	{[]string{"back-end"}, "Backend Developer Internship"},
	{[]string{"full", "stack"}, "Full-Stack Developer Internship"},
	{[]string{"fullstack"}, "Full-Stack Developer Internship"},
	{[]string{"data"}, "Data Science Internship"},
	{[]string{"devops"}, "DevOps Internship"},
	{[]string{"ui"}, "UI/UX Internship"},
}

// NormalizeInternshipTitle maps a free-text or slug internship name to its
// canonical certificate title. Unmatched values pass through, gaining an
// " Internship" suffix unless they already carry one.
func NormalizeInternshipTitle(raw string) string {
	if raw == "" {
		return raw
	}
	s := strings.ToLower(raw)

	for _, rule := range internshipRules {
		matched := true
		for _, kw := range rule.keywords {
			if !strings.Contains(s, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.title
		}
	}

	if strings.Contains(s, "intern") {
		return raw
	}
	return raw + " Internship"
}

// DurationLabelFor renders the human-readable duration for a line item.
// Custom durations are synthesized from hours/weeks, absent values default
// to 0.
func DurationLabelFor(duration string, customHours, customWeeks *int) string {
	switch duration {
	case "custom":
		h, w := 0, 0
		if customHours != nil {
			h = *customHours
		}
		if customWeeks != nil {
			w = *customWeeks
		}
		return fmt.Sprintf("%d hrs, %d weeks", h, w)
	case "1-month":
		return DurationOneMonth
	default:
		return DurationTwoMonths
	}
}

// PriceForLabel returns the fixed price for a duration label
func PriceForLabel(label string) float64 {
	switch label {
	case DurationOneMonth:
		return 400
	case DurationTwoMonths:
		return 600
	default:
		return 700 // Custom
	}
}

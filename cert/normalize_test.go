package cert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInternshipTitle(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"frontend slug", "frontend", "Frontend Developer Internship"},
		{"front-end spelling", "Front-End Development", "Frontend Developer Internship"},
		{"backend slug", "backend", "Backend Developer Internship"},
		{"back-end spelling", "Back-End", "Backend Developer Internship"},
		{"full stack words", "Full Stack Web Development", "Full-Stack Developer Internship"},
		{"fullstack joined", "fullstack", "Full-Stack Developer Internship"},
		{"full-stack hyphenated", "full-stack", "Full-Stack Developer Internship"},
		{"data science", "Data Analytics", "Data Science Internship"},
		{"devops", "DevOps Engineering", "DevOps Internship"},
		{"ui ux", "UI/UX Design", "UI/UX Internship"},
		{"frontend wins over data", "Frontend Data Dashboards", "Frontend Developer Internship"},
		{"already an internship", "Cloud Computing Internship", "Cloud Computing Internship"},
		{"unmatched gets suffix", "Cloud Computing", "Cloud Computing Internship"},
		{"empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeInternshipTitle(tt.raw))
		})
	}
}

func TestDurationLabelFor(t *testing.T) {
	hours, weeks := 120, 6

	assert.Equal(t, "1 Month", DurationLabelFor("1-month", nil, nil))
	assert.Equal(t, "2 Months", DurationLabelFor("2-months", nil, nil))
	assert.Equal(t, "120 hrs, 6 weeks", DurationLabelFor("custom", &hours, &weeks))
	assert.Equal(t, "0 hrs, 0 weeks", DurationLabelFor("custom", nil, nil))
}

func TestPriceForLabel(t *testing.T) {
	assert.Equal(t, 400.0, PriceForLabel("1 Month"))
	assert.Equal(t, 600.0, PriceForLabel("2 Months"))
	assert.Equal(t, 700.0, PriceForLabel("Custom"))
}

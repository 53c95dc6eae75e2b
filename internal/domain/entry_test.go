package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeEntry_Billable(t *testing.T) {
	stop := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    TimeEntry
		expected bool
	}{
		{
			name:     "should accept a stopped entry of at least one minute",
			entry:    TimeEntry{DurationSeconds: 60, Stop: &stop},
			expected: true,
		},
		{
			name:     "should reject a still-running entry",
			entry:    TimeEntry{DurationSeconds: -1704100000, Stop: nil},
			expected: false,
		},
		{
			name:     "should reject a sub-minute entry",
			entry:    TimeEntry{DurationSeconds: 59, Stop: &stop},
			expected: false,
		},
		{
			name:     "should reject a zero-duration entry",
			entry:    TimeEntry{DurationSeconds: 0, Stop: &stop},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.Billable())
		})
	}
}

package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{42 * time.Second, "42.0s"},
		{90 * time.Second, "1m 30s"},
		{61 * time.Minute, "1h 1m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d), tt.d.String())
	}
}

func TestFormatDurationString(t *testing.T) {
	assert.Equal(t, "", formatDurationString(0))
	assert.Equal(t, "1.5s", formatDurationString(1500*time.Millisecond))
}

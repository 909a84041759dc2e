package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationToSeconds(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"1 min 30 sec", 90},
		{"45 seconds", 45},
		{"2 minutes", 120},
		{"3min", 180},
		{"10 secs", 10},
		{"1 minute 5 seconds", 65},
		{"approximately 2 min 15 sec in total", 135},
		{"90", 0},
		{"brief", 0},
		{"", 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DurationToSeconds(tc.input), "input %q", tc.input)
	}
}

func TestDurationToSecondsCaseInsensitive(t *testing.T) {
	assert.Equal(t, 90, DurationToSeconds("1 MIN 30 SEC"))
}

package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISODuration(t *testing.T) {
	testCases := []struct {
		in   string
		want time.Duration
	}{
		{"PT4M13S", 4*time.Minute + 13*time.Second},
		{"PT30M", 30 * time.Minute},
		{"PT30M1S", 30*time.Minute + time.Second},
		{"PT1H", time.Hour},
		{"P1DT2H", 26 * time.Hour},
		{"P1W", 7 * 24 * time.Hour},
		{"PT0S", 0},
		{"P0D", 0},
	}
	for _, testCase := range testCases {
		t.Run(testCase.in, func(t *testing.T) {
			got, err := ParseISODuration(testCase.in)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestParseISODurationRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "P", "PT", "4M13S", "PT4X", "1800", "-PT5M", "P1Y", "P2M"} {
		_, err := ParseISODuration(in)
		assert.Error(t, err, in)
	}
}

func TestParseISODurationRejectsOverflow(t *testing.T) {
	for _, in := range []string{"PT3000000H", "P20000W", "PT9223372037S"} {
		got, err := ParseISODuration(in)
		assert.Error(t, err, in)
		assert.Zero(t, got, in)
	}
}

func TestParseISODurationLargestAccepted(t *testing.T) {
	got, err := ParseISODuration("P100W")
	require.NoError(t, err)
	assert.Equal(t, 100*7*24*time.Hour, got)
}

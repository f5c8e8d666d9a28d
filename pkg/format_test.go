package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "45s", FormatDuration(45))
	assert.Equal(t, "25m00s", FormatDuration(1500))
	assert.Equal(t, "1h05m30s", FormatDuration(3930))
}

func TestFormatPace(t *testing.T) {
	assert.Equal(t, "5:30/km", FormatPace(330))
	assert.Equal(t, "4:05/km", FormatPace(245))
	assert.Equal(t, "", FormatPace(0))
}

func TestParsePace(t *testing.T) {
	secPerKm, err := ParsePace("5:30")
	require.NoError(t, err)
	assert.Equal(t, 330, secPerKm)

	secPerKm, err = ParsePace("10:05")
	require.NoError(t, err)
	assert.Equal(t, 605, secPerKm)

	for _, invalid := range []string{"", "530", "5:60", "-5:30", "5:-1", "a:bc"} {
		_, err := ParsePace(invalid)
		assert.Error(t, err, "pace %q should be rejected", invalid)
	}
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "0 m", FormatDistance(0))
	assert.Equal(t, "800 m", FormatDistance(800))
	assert.Equal(t, "10.0 km", FormatDistance(10000))
	assert.Equal(t, "21.1 km", FormatDistance(21097.5))
}

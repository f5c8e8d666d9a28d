package workout_test

import (
	"testing"

	"github.com/2beens/corosched/internal/workout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

var testThresholds = workout.Thresholds{
	MaxHR:     190,
	RestingHR: 50,
	LTHR:      170,
	LTSP:      270, // 4:30/km
}

func TestEncodeHeartRateTarget_PercentMax(t *testing.T) {
	target, err := workout.EncodeHeartRateTarget(140, 160, workout.HRPercentMax, testThresholds)
	require.NoError(t, err)

	assert.Equal(t, workout.IntensityHeartRate, target.Type)
	assert.Equal(t, 140, target.Low)
	assert.Equal(t, 160, target.High)
	assert.Equal(t, 74, target.PercentLow)  // 140/190
	assert.Equal(t, 84, target.PercentHigh) // 160/190
}

func TestEncodeHeartRateTarget_PercentReserve(t *testing.T) {
	target, err := workout.EncodeHeartRateTarget(120, 160, workout.HRPercentReserve, testThresholds)
	require.NoError(t, err)

	assert.Equal(t, 50, target.PercentLow)  // (120-50)/(190-50)
	assert.Equal(t, 79, target.PercentHigh) // (160-50)/(190-50)
}

func TestEncodeHeartRateTarget_LTHR(t *testing.T) {
	target, err := workout.EncodeHeartRateTarget(150, 165, workout.HRLTHRZone, testThresholds)
	require.NoError(t, err)

	assert.Equal(t, 88, target.PercentLow) // 150/170
	assert.Equal(t, 97, target.PercentHigh)
	assert.Equal(t, 6, target.Zone)
}

func TestEncodeHeartRateTarget_Invalid(t *testing.T) {
	// inverted bounds
	_, err := workout.EncodeHeartRateTarget(160, 140, workout.HRPercentMax, testThresholds)
	assert.ErrorIs(t, err, workout.ErrInvalidBounds)

	// missing baseline
	_, err = workout.EncodeHeartRateTarget(140, 160, workout.HRPercentMax, workout.Thresholds{})
	assert.Error(t, err)
	_, err = workout.EncodeHeartRateTarget(140, 160, workout.HRPercentReserve, workout.Thresholds{MaxHR: 190})
	assert.Error(t, err)
}

func TestEncodePaceTarget(t *testing.T) {
	target, err := workout.EncodePaceTarget(300, 320, workout.PaceMinPerKm, testThresholds.LTSP)
	require.NoError(t, err)

	assert.Equal(t, workout.IntensityPace, target.Type)
	assert.Equal(t, 300, target.Low)
	assert.Equal(t, 320, target.High)
	assert.Equal(t, 90, target.PercentLow) // 270/300
	assert.Equal(t, 84, target.PercentHigh)
	assert.Equal(t, workout.PaceMinPerKm, target.DisplayUnit)
}

func TestEncodePaceTarget_UnitIndependent(t *testing.T) {
	// the stored pace is seconds/km no matter the display unit
	kmTarget, err := workout.EncodePaceTarget(300, 320, workout.PaceMinPerKm, testThresholds.LTSP)
	require.NoError(t, err)
	mileTarget, err := workout.EncodePaceTarget(300, 320, workout.PaceMinPerMile, testThresholds.LTSP)
	require.NoError(t, err)

	assert.Equal(t, kmTarget.Low, mileTarget.Low)
	assert.Equal(t, kmTarget.High, mileTarget.High)
	assert.Equal(t, kmTarget.PercentLow, mileTarget.PercentLow)

	assert.InDelta(t, 482.8, workout.PaceMinPerMile.DisplaySeconds(300), 0.1)
	assert.InDelta(t, 30.0, workout.PaceSecPer100m.DisplaySeconds(300), 0.001)
	assert.InDelta(t, 300.0, workout.PaceMinPerKm.DisplaySeconds(300), 0.001)
}

func TestEncodePaceTarget_Invalid(t *testing.T) {
	// low must be the faster (smaller) pace
	_, err := workout.EncodePaceTarget(320, 300, workout.PaceMinPerKm, testThresholds.LTSP)
	assert.ErrorIs(t, err, workout.ErrInvalidBounds)

	_, err = workout.EncodePaceTarget(300, 320, workout.PaceUnit(9), testThresholds.LTSP)
	assert.Error(t, err)
}

func TestIntensityRoundTrip_HeartRate(t *testing.T) {
	target, err := workout.EncodeHeartRateTarget(140, 160, workout.HRPercentMax, testThresholds)
	require.NoError(t, err)

	var step workout.ExerciseStep
	target.Apply(&step)

	// wire scaling
	assert.Equal(t, 140, step.IntensityValue)
	assert.Equal(t, 160, step.IntensityValueExtend)
	assert.Equal(t, 74000, step.IntensityPercent)
	assert.Equal(t, 84000, step.IntensityPercentExtend)
	assert.Equal(t, 0, step.IntensityMultiplier)
	assert.True(t, step.IsIntensityPercent)

	decoded, err := workout.DecodeIntensity(&step)
	require.NoError(t, err)
	assert.Equal(t, target, decoded)
}

func TestIntensityRoundTrip_Pace(t *testing.T) {
	target, err := workout.EncodePaceTarget(300, 320, workout.PaceMinPerKm, testThresholds.LTSP)
	require.NoError(t, err)

	var step workout.ExerciseStep
	target.Apply(&step)

	// wire scaling: seconds/km times 1000, with the multiplier recording it
	assert.Equal(t, 300000, step.IntensityValue)
	assert.Equal(t, 320000, step.IntensityValueExtend)
	assert.Equal(t, 1000, step.IntensityMultiplier)
	assert.False(t, step.IsIntensityPercent)

	decoded, err := workout.DecodeIntensity(&step)
	require.NoError(t, err)
	assert.Equal(t, target, decoded)
}

func TestDecodeIntensity_LegacyPaceRecord(t *testing.T) {
	// old records store plain seconds/km with a zero multiplier
	step := workout.ExerciseStep{
		IntensityType:        workout.IntensityPace,
		IntensityValue:       300,
		IntensityValueExtend: 320,
		IntensityMultiplier:  0,
		IntensityDisplayUnit: workout.PaceMinPerKm,
	}

	decoded, err := workout.DecodeIntensity(&step)
	require.NoError(t, err)
	assert.Equal(t, 300, decoded.Low)
	assert.Equal(t, 320, decoded.High)
}

func TestDecodeIntensity_PreservesAltPaceCode(t *testing.T) {
	step := workout.ExerciseStep{
		IntensityType:        workout.IntensityPaceAlt,
		IntensityValue:       300000,
		IntensityValueExtend: 320000,
		IntensityMultiplier:  1000,
	}

	decoded, err := workout.DecodeIntensity(&step)
	require.NoError(t, err)
	// the alternate code round-trips unchanged
	assert.Equal(t, workout.IntensityPaceAlt, decoded.Type)
	assert.Equal(t, 300, decoded.Low)

	var reencoded workout.ExerciseStep
	decoded.Apply(&reencoded)
	assert.Equal(t, workout.IntensityPaceAlt, reencoded.IntensityType)
	assert.Equal(t, 300000, reencoded.IntensityValue)
}

func TestDecodeIntensity_Unknown(t *testing.T) {
	step := workout.ExerciseStep{IntensityType: workout.IntensityType(77)}
	_, err := workout.DecodeIntensity(&step)
	assert.Error(t, err)
}

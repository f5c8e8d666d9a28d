package workout

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBounds marks an intensity range rejected before any remote call:
// the low bound must be the faster/smaller one and both must be positive.
var ErrInvalidBounds = errors.New("invalid intensity bounds")

// Thresholds are the athlete's physiological baselines used as percentage
// references by the codec. LTSP is the lactate-threshold pace in seconds/km.
type Thresholds struct {
	MaxHR     int
	RestingHR int
	LTHR      int
	LTSP      int
}

// IntensityTarget is the decoded, canonical intensity block of a step.
// For heart-rate targets Low/High are BPM; for pace targets they are plain
// seconds per kilometer (low = faster = smaller). Percent values are integer
// percentages, without the ×1000 wire scaling.
type IntensityTarget struct {
	Type        IntensityType
	HRType      HRType
	Low         int
	High        int
	PercentLow  int
	PercentHigh int
	Zone        int
	DisplayUnit PaceUnit
}

// EncodeHeartRateTarget builds a heart-rate intensity target from BPM bounds,
// computing the percentage fields against the baseline selected by hrType.
func EncodeHeartRateTarget(lowBpm, highBpm int, hrType HRType, th Thresholds) (IntensityTarget, error) {
	if lowBpm <= 0 || highBpm < lowBpm {
		return IntensityTarget{}, fmt.Errorf("%w: bpm range %d-%d", ErrInvalidBounds, lowBpm, highBpm)
	}

	percent := func(bpm int) (int, error) {
		switch hrType {
		case HRPercentMax:
			if th.MaxHR <= 0 {
				return 0, fmt.Errorf("max HR threshold not set")
			}
			return roundPercent(float64(bpm) / float64(th.MaxHR)), nil
		case HRPercentReserve:
			if th.MaxHR <= th.RestingHR || th.RestingHR <= 0 {
				return 0, fmt.Errorf("HR reserve thresholds not set (max=%d, resting=%d)", th.MaxHR, th.RestingHR)
			}
			return roundPercent(float64(bpm-th.RestingHR) / float64(th.MaxHR-th.RestingHR)), nil
		case HRLTHRZone:
			if th.LTHR <= 0 {
				return 0, fmt.Errorf("LTHR threshold not set")
			}
			return roundPercent(float64(bpm) / float64(th.LTHR)), nil
		default:
			return 0, fmt.Errorf("unknown hrType %d", hrType)
		}
	}

	percentLow, err := percent(lowBpm)
	if err != nil {
		return IntensityTarget{}, err
	}
	percentHigh, err := percent(highBpm)
	if err != nil {
		return IntensityTarget{}, err
	}

	return IntensityTarget{
		Type:        IntensityHeartRate,
		HRType:      hrType,
		Low:         lowBpm,
		High:        highBpm,
		PercentLow:  percentLow,
		PercentHigh: percentHigh,
		Zone:        hrZoneLabel(hrType, percentLow),
	}, nil
}

// EncodePaceTarget builds a pace intensity target from seconds/km bounds.
// The stored value is always seconds/km regardless of displayUnit; unit
// conversion happens only at the presentation boundary. The percentage fields
// are computed against the threshold pace (faster than threshold > 100%).
func EncodePaceTarget(lowSecPerKm, highSecPerKm int, displayUnit PaceUnit, ltspSecPerKm int) (IntensityTarget, error) {
	if lowSecPerKm <= 0 || highSecPerKm < lowSecPerKm {
		return IntensityTarget{}, fmt.Errorf(
			"%w: pace range %d-%d sec/km (low bound must be the faster pace)",
			ErrInvalidBounds, lowSecPerKm, highSecPerKm,
		)
	}
	if displayUnit < PaceMinPerKm || displayUnit > PaceSecPer100m {
		return IntensityTarget{}, fmt.Errorf("unknown pace display unit %d", displayUnit)
	}

	var percentLow, percentHigh int
	if ltspSecPerKm > 0 {
		percentLow = roundPercent(float64(ltspSecPerKm) / float64(lowSecPerKm))
		percentHigh = roundPercent(float64(ltspSecPerKm) / float64(highSecPerKm))
	}

	return IntensityTarget{
		Type:        IntensityPace,
		Low:         lowSecPerKm,
		High:        highSecPerKm,
		PercentLow:  percentLow,
		PercentHigh: percentHigh,
		DisplayUnit: displayUnit,
	}, nil
}

// Apply writes the target onto a step's wire fields, with the ×1000 scaling
// the backend expects.
func (t IntensityTarget) Apply(step *ExerciseStep) {
	step.IntensityType = t.Type
	switch t.Type {
	case IntensityHeartRate:
		step.HRType = t.HRType
		step.IntensityValue = t.Low
		step.IntensityValueExtend = t.High
		step.IntensityMultiplier = 0
		step.IntensityPercent = t.PercentLow * 1000
		step.IntensityPercentExtend = t.PercentHigh * 1000
		step.IntensityCustom = t.Zone
		step.IntensityDisplayUnit = 0
		step.IsIntensityPercent = true
	case IntensityPace, IntensityPaceAlt:
		step.HRType = 0
		step.IntensityValue = t.Low * 1000
		step.IntensityValueExtend = t.High * 1000
		step.IntensityMultiplier = 1000
		step.IntensityPercent = t.PercentLow * 1000
		step.IntensityPercentExtend = t.PercentHigh * 1000
		step.IntensityCustom = 0
		step.IntensityDisplayUnit = t.DisplayUnit
		step.IsIntensityPercent = false
	default:
		step.HRType = 0
		step.IntensityValue = 0
		step.IntensityValueExtend = 0
		step.IntensityMultiplier = 0
		step.IntensityPercent = 0
		step.IntensityPercentExtend = 0
		step.IntensityCustom = 0
		step.IntensityDisplayUnit = 0
		step.IsIntensityPercent = false
	}
}

// DecodeIntensity reads a step's wire intensity fields back into the canonical
// form. For pace it branches on intensityMultiplier: 1000 means the stored
// value is seconds/km ×1000, anything else means the value already is plain
// seconds/km (legacy records). The multiplier is authoritative; provenance is
// never guessed.
func DecodeIntensity(step *ExerciseStep) (IntensityTarget, error) {
	switch step.IntensityType {
	case IntensityNone:
		return IntensityTarget{Type: IntensityNone}, nil

	case IntensityHeartRate:
		return IntensityTarget{
			Type:        IntensityHeartRate,
			HRType:      step.HRType,
			Low:         step.IntensityValue,
			High:        step.IntensityValueExtend,
			PercentLow:  step.IntensityPercent / 1000,
			PercentHigh: step.IntensityPercentExtend / 1000,
			Zone:        step.IntensityCustom,
		}, nil

	case IntensityPace, IntensityPaceAlt:
		low, high := step.IntensityValue, step.IntensityValueExtend
		if step.IntensityMultiplier == 1000 {
			low /= 1000
			high /= 1000
		}
		return IntensityTarget{
			Type:        step.IntensityType,
			Low:         low,
			High:        high,
			PercentLow:  step.IntensityPercent / 1000,
			PercentHigh: step.IntensityPercentExtend / 1000,
			DisplayUnit: step.IntensityDisplayUnit,
		}, nil

	default:
		return IntensityTarget{}, fmt.Errorf("unknown intensity type %d", step.IntensityType)
	}
}

func roundPercent(ratio float64) int {
	return int(math.Round(ratio * 100))
}

// hrZoneLabel picks the intensityCustom zone label: 6 for LTHR-derived
// targets, otherwise a generic 1/2/3 band from the low-bound percentage.
func hrZoneLabel(hrType HRType, percentLow int) int {
	if hrType == HRLTHRZone {
		return 6
	}
	switch {
	case percentLow < 60:
		return 1
	case percentLow < 80:
		return 2
	default:
		return 3
	}
}

package workout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SportType is the program-context sport code (differs from activity codes).
type SportType int

const (
	SportRunning   SportType = 1
	SportTrail     SportType = 3
	SportStrength  SportType = 4
	SportHike      SportType = 5
	SportBike      SportType = 6
	SportPoolSwim  SportType = 9
	SportOpenWater SportType = 10
)

var sportNameToCode = map[string]SportType{
	"running":    SportRunning,
	"run":        SportRunning,
	"trail":      SportTrail,
	"strength":   SportStrength,
	"hike":       SportHike,
	"bike":       SportBike,
	"cycling":    SportBike,
	"pool_swim":  SportPoolSwim,
	"swim":       SportPoolSwim,
	"open_water": SportOpenWater,
}

// ParseSport resolves a human sport name (e.g. "running", "bike") to its code.
func ParseSport(name string) (SportType, error) {
	code, ok := sportNameToCode[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown sport %q", name)
	}
	return code, nil
}

// ExerciseType is the node type code within a workout program.
type ExerciseType int

const (
	ExerciseGroupContainer ExerciseType = 0
	ExerciseWarmup         ExerciseType = 1
	ExerciseInterval       ExerciseType = 2
	ExerciseCooldown       ExerciseType = 3
	ExerciseRecovery       ExerciseType = 4
)

// TargetType selects what a step's targetValue means.
type TargetType int

const (
	TargetNone     TargetType = 0
	TargetDuration TargetType = 2 // seconds
	TargetDistance TargetType = 5 // meters
)

// Target display units.
const (
	TargetUnitSeconds    = 0
	TargetUnitMeters     = 1
	TargetUnitKilometers = 2
)

// RestType selects how rest between repeat sets is expressed.
type RestType int

const (
	RestTimed RestType = 0 // restValue holds seconds
	RestNone  RestType = 3
)

// IntensityType selects the intensity variant of a step.
type IntensityType int

const (
	IntensityNone      IntensityType = 0
	IntensityHeartRate IntensityType = 2
	IntensityPace      IntensityType = 3
	// IntensityPaceAlt is used by non-running sports; the encoding is identical
	// to IntensityPace. The decoder keeps whichever code it saw so a record
	// round-trips unchanged.
	IntensityPaceAlt IntensityType = 8
)

// HRType selects the percentage baseline of a heart-rate target.
type HRType int

const (
	HRPercentMax     HRType = 1
	HRPercentReserve HRType = 2
	HRLTHRZone       HRType = 3
)

// PaceUnit is the pace display unit selector. On the wire it is a string in
// requests but an integer in responses; both are accepted and the internal
// representation is always the integer.
type PaceUnit int

const (
	PaceMinPerKm   PaceUnit = 1
	PaceMinPerMile PaceUnit = 2
	PaceSecPer100m PaceUnit = 3
)

const metersPerMile = 1609.344

func (u PaceUnit) MarshalJSON() ([]byte, error) {
	// requests carry the unit as a string
	return json.Marshal(strconv.Itoa(int(u)))
}

func (u *PaceUnit) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*u = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid pace display unit %s: %w", data, err)
	}
	*u = PaceUnit(v)
	return nil
}

// DisplaySeconds converts a stored pace (seconds per kilometer) to the
// numeric value shown for this unit. Stored values are always seconds/km;
// conversion happens only at the presentation boundary.
func (u PaceUnit) DisplaySeconds(secPerKm float64) float64 {
	switch u {
	case PaceMinPerMile:
		return secPerKm * metersPerMile / 1000
	case PaceSecPer100m:
		return secPerKm / 10
	default:
		return secPerKm
	}
}

// Version object status codes for schedule mutations.
const (
	StatusCreate = 1
	StatusUpdate = 2
	StatusDelete = 3
)

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/2beens/corosched/internal/profile"
	"github.com/2beens/corosched/internal/schedule"
	"github.com/2beens/corosched/internal/workout"
	"github.com/2beens/corosched/pkg"
)

// parseWorkoutArgs builds a single-step workout request from CLI flags.
// Structured multi-step workouts are built programmatically through the
// schedule package; the CLI only covers the simple case.
func parseWorkoutArgs(
	ctx context.Context,
	profileService *profile.Service,
	cmd string,
	args []string,
) (*schedule.CreateWorkout, error) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	name := fs.String("name", "", "workout name")
	sportName := fs.String("sport", "run", "sport [run | trail | strength | hike | bike | pool | openwater]")
	day := fs.String("day", "", "date (YYYY-MM-DD)")
	durationMin := fs.Int("duration-min", 0, "step duration in minutes")
	distanceKm := fs.Float64("distance-km", 0, "step distance in kilometers")
	paceLow := fs.String("pace-low", "", "fast pace bound (M:SS per km)")
	paceHigh := fs.String("pace-high", "", "slow pace bound (M:SS per km)")
	hrLow := fs.Int("hr-low", 0, "low heart rate bound (BPM)")
	hrHigh := fs.Int("hr-high", 0, "high heart rate bound (BPM)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *name == "" {
		return nil, fmt.Errorf("missing -name")
	}
	sport, err := workout.ParseSport(*sportName)
	if err != nil {
		return nil, err
	}
	happenDay, err := pkg.ParseDay(*day)
	if err != nil {
		return nil, fmt.Errorf("invalid -day: %w", err)
	}

	step := workout.Step{Type: workout.ExerciseInterval}
	switch {
	case *durationMin > 0 && *distanceKm > 0:
		return nil, fmt.Errorf("-duration-min and -distance-km are mutually exclusive")
	case *durationMin > 0:
		step.DurationSeconds = *durationMin * 60
	case *distanceKm > 0:
		step.DistanceMeters = int(*distanceKm * 1000)
	default:
		return nil, fmt.Errorf("one of -duration-min or -distance-km is required")
	}

	intensity, err := parseIntensityFlags(ctx, profileService, *paceLow, *paceHigh, *hrLow, *hrHigh)
	if err != nil {
		return nil, err
	}
	step.Intensity = intensity

	return &schedule.CreateWorkout{
		Name:      *name,
		Sport:     sport,
		HappenDay: happenDay,
		Nodes:     []workout.Node{workout.StepNode(step)},
	}, nil
}

func parseIntensityFlags(
	ctx context.Context,
	profileService *profile.Service,
	paceLow, paceHigh string,
	hrLow, hrHigh int,
) (*workout.IntensityTarget, error) {
	hasPace := paceLow != "" || paceHigh != ""
	hasHR := hrLow > 0 || hrHigh > 0

	switch {
	case !hasPace && !hasHR:
		return nil, nil
	case hasPace && hasHR:
		return nil, fmt.Errorf("pace and heart rate targets are mutually exclusive")
	}

	thresholds, err := profileService.Thresholds(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile thresholds: %w", err)
	}

	if hasPace {
		low, err := pkg.ParsePace(paceLow)
		if err != nil {
			return nil, fmt.Errorf("invalid -pace-low: %w", err)
		}
		high, err := pkg.ParsePace(paceHigh)
		if err != nil {
			return nil, fmt.Errorf("invalid -pace-high: %w", err)
		}
		target, err := workout.EncodePaceTarget(low, high, workout.PaceMinPerKm, thresholds.LTSP)
		if err != nil {
			return nil, err
		}
		return &target, nil
	}

	target, err := workout.EncodeHeartRateTarget(hrLow, hrHigh, workout.HRPercentMax, thresholds)
	if err != nil {
		return nil, err
	}
	return &target, nil
}

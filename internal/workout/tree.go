package workout

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidTree marks a structurally invalid step/group description,
// rejected before any remote call.
var ErrInvalidTree = errors.New("invalid exercise tree")

// Step describes one executable block of a workout, as supplied by the caller.
// At most one target (duration or distance) may be set; recovery steps may
// have none.
type Step struct {
	Type            ExerciseType
	DurationSeconds int
	DistanceMeters  int
	Intensity       *IntensityTarget
}

// Group describes a repeat block: its steps run Sets times, with an optional
// timed rest between repetitions.
type Group struct {
	Sets        int
	RestSeconds int
	Steps       []Step
}

// Node is a tagged step-or-group in display order; exactly one side is set.
type Node struct {
	Step  *Step
	Group *Group
}

func StepNode(s Step) Node   { return Node{Step: &s} }
func GroupNode(g Group) Node { return Node{Group: &g} }

// Validate checks a node sequence against the local contract. All independent
// failures are reported together.
func Validate(nodes []Node) error {
	if len(nodes) == 0 {
		return fmt.Errorf("%w: no exercises", ErrInvalidTree)
	}

	var err error
	for i, n := range nodes {
		switch {
		case n.Step != nil && n.Group != nil:
			err = multierr.Append(err, fmt.Errorf("%w: node %d is both step and group", ErrInvalidTree, i))
		case n.Step == nil && n.Group == nil:
			err = multierr.Append(err, fmt.Errorf("%w: node %d is empty", ErrInvalidTree, i))
		case n.Step != nil:
			err = multierr.Append(err, validateStep(i, n.Step))
		default:
			g := n.Group
			if g.Sets < 1 {
				err = multierr.Append(err, fmt.Errorf("%w: group %d has %d sets", ErrInvalidTree, i, g.Sets))
			}
			if g.RestSeconds < 0 {
				err = multierr.Append(err, fmt.Errorf("%w: group %d has negative rest", ErrInvalidTree, i))
			}
			if len(g.Steps) == 0 {
				err = multierr.Append(err, fmt.Errorf("%w: group %d has no steps", ErrInvalidTree, i))
			}
			for _, s := range g.Steps {
				err = multierr.Append(err, validateStep(i, &s))
			}
		}
	}
	return err
}

func validateStep(pos int, s *Step) error {
	var err error
	if s.Type == ExerciseGroupContainer || s.Type < 0 || s.Type > ExerciseRecovery {
		err = multierr.Append(err, fmt.Errorf("%w: node %d has invalid step type %d", ErrInvalidTree, pos, s.Type))
	}
	if s.DurationSeconds < 0 || s.DistanceMeters < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: node %d has a negative target", ErrInvalidTree, pos))
	}
	if s.DurationSeconds > 0 && s.DistanceMeters > 0 {
		err = multierr.Append(err, fmt.Errorf("%w: node %d has both duration and distance targets", ErrInvalidTree, pos))
	}
	if s.DurationSeconds == 0 && s.DistanceMeters == 0 && s.Type != ExerciseRecovery {
		err = multierr.Append(err, fmt.Errorf("%w: node %d needs a duration or distance target", ErrInvalidTree, pos))
	}
	return err
}

// BuildExercises converts a node sequence to the wire exercise list for a new
// workout. Ids are assigned sequentially starting at 1 across groups and steps
// in tree order; a group shares its sortNo with its first child step and
// subsequent siblings increment from there; every grouped step is stamped with
// its group's id.
//
// Building the same sequence twice yields identical assignments.
func BuildExercises(nodes []Node, sport SportType) ([]Exercise, error) {
	if err := Validate(nodes); err != nil {
		return nil, err
	}

	var exercises []Exercise
	id, sortNo := 1, 1

	for _, n := range nodes {
		if n.Step != nil {
			exercises = append(exercises, buildStep(*n.Step, id, sortNo, 0, sport))
			id++
			sortNo++
			continue
		}

		g := n.Group
		groupID := id
		restType := RestNone
		if g.RestSeconds > 0 {
			restType = RestTimed
		}
		exercises = append(exercises, GroupExercise(ExerciseGroup{
			ExerciseBase: ExerciseBase{
				ID:        groupID,
				SortNo:    sortNo, // shared with the first child step
				Sets:      g.Sets,
				RestType:  restType,
				RestValue: g.RestSeconds,
				Name:      fmt.Sprintf("%dx", g.Sets),
				SourceID:  "0",
			},
		}))
		id++

		for _, s := range g.Steps {
			exercises = append(exercises, buildStep(s, id, sortNo, groupID, sport))
			id++
			sortNo++
		}
	}

	return exercises, nil
}

func buildStep(s Step, id, sortNo, groupID int, sport SportType) Exercise {
	tmpl := stepTemplates[s.Type]
	step := ExerciseStep{
		ExerciseBase: ExerciseBase{
			ID:        id,
			SortNo:    sortNo,
			Sets:      1,
			SportType: sport,
			RestType:  RestNone,
			Name:      tmpl.name,
			Overview:  tmpl.overview,
			OriginID:  tmpl.originID,
			SourceID:  "0",
		},
		ExerciseType:    s.Type,
		GroupID:         groupID,
		CreateTimestamp: tmpl.createTimestamp,
		DefaultOrder:    tmpl.defaultOrder,
		IsDefaultAdd:    tmpl.isDefaultAdd,
		Equipment:       []int{1},
		Part:            []int{0},
	}

	switch {
	case s.DurationSeconds > 0:
		step.TargetType = TargetDuration
		step.TargetValue = s.DurationSeconds
		step.TargetDisplayUnit = TargetUnitSeconds
	case s.DistanceMeters > 0:
		step.TargetType = TargetDistance
		step.TargetValue = s.DistanceMeters
		if s.DistanceMeters >= 1000 && s.DistanceMeters%1000 == 0 {
			step.TargetDisplayUnit = TargetUnitKilometers
		} else {
			step.TargetDisplayUnit = TargetUnitMeters
		}
	default:
		step.TargetType = TargetNone
	}

	if s.Intensity != nil {
		s.Intensity.Apply(&step)
	}

	return StepExercise(step)
}

// IsSimple reports whether the node sequence is a "simple" workout: a single
// non-interval step with no repeat group. Simple workouts submit with a
// different program subType.
func IsSimple(nodes []Node) bool {
	return len(nodes) == 1 &&
		nodes[0].Step != nil &&
		nodes[0].Step.Type != ExerciseInterval
}

// ValidateSequence checks the structural invariants of a wire exercise list,
// typically one decoded from the backend before resubmission: ids are unique
// and positive, every step's groupId references an earlier group, and server
// and local group sortNo encodings are not mixed in one list.
func ValidateSequence(exercises []Exercise) error {
	var err error
	seenIDs := make(map[int]bool)
	groupIDs := make(map[int]bool)
	serverEncoded, localEncoded := 0, 0

	for i, ex := range exercises {
		base := ex.Base()
		if base == nil {
			err = multierr.Append(err, fmt.Errorf("%w: exercise %d is empty", ErrInvalidTree, i))
			continue
		}
		if base.ID <= 0 {
			err = multierr.Append(err, fmt.Errorf("%w: exercise %d has non-positive id %d", ErrInvalidTree, i, base.ID))
		}
		if seenIDs[base.ID] {
			err = multierr.Append(err, fmt.Errorf("%w: duplicate exercise id %d", ErrInvalidTree, base.ID))
		}
		seenIDs[base.ID] = true

		if ex.Group != nil {
			groupIDs[base.ID] = true
			if ex.Group.HasServerSortNo() {
				serverEncoded++
			} else {
				localEncoded++
			}
			continue
		}

		if gid := ex.Step.GroupID; gid != 0 && !groupIDs[gid] {
			err = multierr.Append(err, fmt.Errorf(
				"%w: step id %d references group %d which is not an earlier group",
				ErrInvalidTree, base.ID, gid,
			))
		}
	}

	if serverEncoded > 0 && localEncoded > 0 {
		err = multierr.Append(err, fmt.Errorf(
			"%w: mixed server and local group sortNo encodings in one list", ErrInvalidTree,
		))
	}

	return err
}

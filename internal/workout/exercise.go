package workout

import (
	"encoding/json"
	"fmt"
)

// ExerciseBase holds the fields shared by groups and steps.
type ExerciseBase struct {
	ID        int       `json:"id"`
	SortNo    int       `json:"sortNo"`
	Sets      int       `json:"sets"`
	SportType SportType `json:"sportType"`
	RestType  RestType  `json:"restType"`
	RestValue int       `json:"restValue"`
	IsGroup   bool      `json:"isGroup"`
	Name      string    `json:"name"`
	Overview  string    `json:"overview"`
	OriginID  string    `json:"originId"`
	SourceID  string    `json:"sourceId"`
	SourceURL string    `json:"sourceUrl"`
	Access    int       `json:"access"`
	SubType   int       `json:"subType"`
}

// ExerciseGroup is a repeat container. It carries no intensity block, no
// groupId and no target display unit; its sets count is the repeat count.
type ExerciseGroup struct {
	ExerciseBase
	ExerciseType ExerciseType `json:"exerciseType"` // always ExerciseGroupContainer
	ProgramID    string       `json:"programId"`
	DefaultOrder int          `json:"defaultOrder"`
	IsDefaultAdd int          `json:"isDefaultAdd"`
	VideoURL     string       `json:"videoUrl"`
}

// ExerciseStep is a single executable step, optionally inside a group.
type ExerciseStep struct {
	ExerciseBase
	ExerciseType      ExerciseType `json:"exerciseType"`
	GroupID           int          `json:"groupId,omitempty"` // 0 for top-level steps
	TargetType        TargetType   `json:"targetType"`
	TargetValue       int          `json:"targetValue"`
	TargetDisplayUnit int          `json:"targetDisplayUnit"`

	IntensityType          IntensityType `json:"intensityType"`
	HRType                 HRType        `json:"hrType"`
	IntensityValue         int           `json:"intensityValue"`
	IntensityValueExtend   int           `json:"intensityValueExtend"`
	IntensityMultiplier    int           `json:"intensityMultiplier"`
	IntensityPercent       int           `json:"intensityPercent"`
	IntensityPercentExtend int           `json:"intensityPercentExtend"`
	IntensityCustom        int           `json:"intensityCustom"`
	IntensityDisplayUnit   PaceUnit      `json:"intensityDisplayUnit"`
	IsIntensityPercent     bool          `json:"isIntensityPercent"`

	CreateTimestamp int64  `json:"createTimestamp"`
	DefaultOrder    int    `json:"defaultOrder"`
	IsDefaultAdd    int    `json:"isDefaultAdd"`
	Equipment       []int  `json:"equipment"`
	Part            []int  `json:"part"`
	UserID          int    `json:"userId"`
	VideoURL        string `json:"videoUrl"`
}

// Exercise is the tagged group/step variant; exactly one of the two is set.
// On the wire both shapes share one flat object distinguished by isGroup.
type Exercise struct {
	Group *ExerciseGroup
	Step  *ExerciseStep
}

func GroupExercise(g ExerciseGroup) Exercise {
	g.IsGroup = true
	g.ExerciseType = ExerciseGroupContainer
	return Exercise{Group: &g}
}

func StepExercise(s ExerciseStep) Exercise {
	s.IsGroup = false
	return Exercise{Step: &s}
}

// Base returns the shared fields of whichever variant is set.
func (e Exercise) Base() *ExerciseBase {
	if e.Group != nil {
		return &e.Group.ExerciseBase
	}
	if e.Step != nil {
		return &e.Step.ExerciseBase
	}
	return nil
}

func (e Exercise) MarshalJSON() ([]byte, error) {
	switch {
	case e.Group != nil && e.Step != nil:
		return nil, fmt.Errorf("exercise %d is both group and step", e.Group.ID)
	case e.Group != nil:
		return json.Marshal(e.Group)
	case e.Step != nil:
		return json.Marshal(e.Step)
	default:
		return nil, fmt.Errorf("empty exercise")
	}
}

func (e *Exercise) UnmarshalJSON(data []byte) error {
	var tag struct {
		IsGroup bool `json:"isGroup"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("read isGroup tag: %w", err)
	}
	if tag.IsGroup {
		group := &ExerciseGroup{}
		if err := json.Unmarshal(data, group); err != nil {
			return fmt.Errorf("unmarshal group: %w", err)
		}
		e.Group, e.Step = group, nil
		return nil
	}
	step := &ExerciseStep{}
	if err := json.Unmarshal(data, step); err != nil {
		return fmt.Errorf("unmarshal step: %w", err)
	}
	e.Group, e.Step = nil, step
	return nil
}

// serverGroupSortNo is the backend's encoding for sortNo of groups it has
// persisted: the group id shifted into the top byte range. It is recognized on
// the read path and must never be generated for new data.
func serverGroupSortNo(id int) int {
	return id << 24
}

// HasServerSortNo reports whether a group's sortNo uses the backend encoding
// (id << 24) rather than the display-order encoding used for new submissions.
func (g *ExerciseGroup) HasServerSortNo() bool {
	return g.SortNo == serverGroupSortNo(g.ID) && g.ID > 0
}

// stepTemplate carries exercise-library metadata the backend expects on steps.
type stepTemplate struct {
	name            string
	overview        string
	originID        string
	createTimestamp int64
	defaultOrder    int
	isDefaultAdd    int
}

// Template metadata from the running exercise library.
var stepTemplates = map[ExerciseType]stepTemplate{
	ExerciseWarmup: {
		name:            "T1120",
		overview:        "sid_run_warm_up_dist",
		originID:        "425895398452936705",
		createTimestamp: 1586584068,
		defaultOrder:    1,
	},
	ExerciseInterval: {
		name:            "T3001",
		overview:        "sid_run_training",
		originID:        "426109589008859136",
		createTimestamp: 1587381919,
		defaultOrder:    2,
		isDefaultAdd:    1,
	},
	ExerciseCooldown: {
		name:            "T1122",
		overview:        "sid_run_cool_down_dist",
		originID:        "425895456971866112",
		createTimestamp: 1586584214,
		defaultOrder:    3,
	},
	ExerciseRecovery: {
		name:            "T1123",
		overview:        "sid_run_cool_down_dist",
		originID:        "425895398452936705",
		createTimestamp: 1586584214,
		defaultOrder:    3,
	},
}

// Default exercise-library source fields attached to programs and plans.
const (
	DefaultSourceID  = "425868113867882496"
	DefaultSourceURL = "https://d31oxp44ddzkyk.cloudfront.net/source/source_default/0/5a9db1c3363348298351aaabfd70d0f5.jpg"
)

package workout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Meters is a distance the backend sends either as a JSON number or as a
// decimal string with two fraction digits; requests always send the string
// form. Normalized here so the rest of the engine sees one numeric type.
type Meters float64

func (m Meters) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(m), 'f', 2, 64))
}

func (m *Meters) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid distance value %s: %w", data, err)
	}
	*m = Meters(v)
	return nil
}

// ReferExercise is a backend-required program sub-object; always zeroed for
// workouts built here.
type ReferExercise struct {
	IntensityType int `json:"intensityType"`
	HRType        int `json:"hrType"`
	ValueType     int `json:"valueType"`
}

// BarChartItem is one per-exercise entry of the calculate preview's bar chart
// (rendered width/height are UI hints computed by the backend).
type BarChartItem struct {
	ExerciseID  int     `json:"exerciseId"`
	TargetValue int     `json:"targetValue"`
	Value       float64 `json:"value"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

// Program is the workout content record for one idInPlan: name, sport and the
// exercise sequence, plus the planned/actual metric fields the backend fills.
// It carries no date; entities link to it by matching idInPlan.
//
// The field set deliberately covers everything the backend returns so that a
// fetched program can be resubmitted without clobbering fields this client
// does not interpret.
type Program struct {
	Access                int              `json:"access"`
	AuthorID              string           `json:"authorId"`
	CreateTimestamp       int64            `json:"createTimestamp"`
	Distance              Meters           `json:"distance"`
	DistanceDisplayUnit   int              `json:"distanceDisplayUnit,omitempty"`
	Duration              int              `json:"duration"`
	Essence               int              `json:"essence"`
	EstimatedType         int              `json:"estimatedType"`
	EstimatedValue        int              `json:"estimatedValue"`
	ExerciseNum           int              `json:"exerciseNum"`
	Exercises             []Exercise       `json:"exercises"`
	ExerciseBarChart      []BarChartItem   `json:"exerciseBarChart,omitempty"`
	FastIntensityTypeName string           `json:"fastIntensityTypeName"`
	HeadPic               string           `json:"headPic"`
	ID                    string           `json:"id"`
	IDInPlan              int64            `json:"idInPlan"`
	Name                  string           `json:"name"`
	Nickname              string           `json:"nickname"`
	OriginEssence         int              `json:"originEssence"`
	Overview              string           `json:"overview"`
	PBVersion             int              `json:"pbVersion"`
	Pitch                 float64          `json:"pitch,omitempty"`
	PlanIDIndex           int              `json:"planIdIndex"`
	PoolLength            int              `json:"poolLength"`
	PoolLengthID          int              `json:"poolLengthId"`
	PoolLengthUnit        int              `json:"poolLengthUnit"`
	Profile               string           `json:"profile"`
	ReferExercise         ReferExercise    `json:"referExercise"`
	Sex                   int              `json:"sex"`
	ShareURL              string           `json:"shareUrl"`
	Simple                bool             `json:"simple"`
	SourceID              string           `json:"sourceId"`
	SourceURL             string           `json:"sourceUrl"`
	SportType             SportType        `json:"sportType"`
	Star                  int              `json:"star"`
	SubType               int              `json:"subType"`
	TargetType            int              `json:"targetType"`
	TargetValue           int              `json:"targetValue"`
	ThirdPartyID          int              `json:"thirdPartyId"`
	TotalSets             int              `json:"totalSets"`
	TrainingLoad          int              `json:"trainingLoad"`
	Type                  int              `json:"type"`
	Unit                  int              `json:"unit"`
	UserID                string           `json:"userId"`
	Version               int              `json:"version"`
	VideoCoverURL         string           `json:"videoCoverUrl"`
	VideoURL              string           `json:"videoUrl"`

	// metric fields present on programs fetched from an active calendar
	PlanDistance       Meters `json:"planDistance,omitempty"`
	PlanDuration       int    `json:"planDuration,omitempty"`
	PlanTrainingLoad   int    `json:"planTrainingLoad,omitempty"`
	ActualDistance     Meters `json:"actualDistance,omitempty"`
	ActualDuration     int    `json:"actualDuration,omitempty"`
	ActualTrainingLoad int    `json:"actualTrainingLoad,omitempty"`
}

// simpleSubType / complexSubType select the backend's program flavor: simple
// single-step workouts vs structured multi-step ones.
const (
	simpleSubType  = 0
	complexSubType = 65535
)

// NewProgram builds a brand-new program from a node sequence. Identity fields
// are zeroed placeholders ("0") until the backend assigns real values.
func NewProgram(name string, sport SportType, nodes []Node) (*Program, error) {
	exercises, err := BuildExercises(nodes, sport)
	if err != nil {
		return nil, err
	}

	simple := IsSimple(nodes)
	subType := complexSubType
	totalSets := 0
	if simple {
		subType = simpleSubType
		totalSets = countSteps(exercises)
	}

	return &Program{
		Access:         1,
		AuthorID:       "0",
		Exercises:      exercises,
		ID:             "0",
		Name:           name,
		PBVersion:      2,
		PoolLength:     2500,
		PoolLengthID:   1,
		PoolLengthUnit: 2,
		Simple:         simple,
		SourceID:       DefaultSourceID,
		SourceURL:      DefaultSourceURL,
		SportType:      sport,
		SubType:        subType,
		TotalSets:      totalSets,
		UserID:         "0",
	}, nil
}

// ApplyCalculation merges a calculate preview into the program, making the
// backend-derived metrics part of the submission.
func (p *Program) ApplyCalculation(res *CalculateResult) {
	p.Distance = res.PlanDistance
	p.Duration = res.PlanDuration
	p.TrainingLoad = res.PlanTrainingLoad
	p.Pitch = res.PlanPitch
	p.ExerciseBarChart = res.ExerciseBarChart
	p.DistanceDisplayUnit = 1 // km
}

func countSteps(exercises []Exercise) int {
	count := 0
	for _, ex := range exercises {
		if ex.Step != nil {
			count++
		}
	}
	return count
}

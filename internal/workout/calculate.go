package workout

import (
	"context"
	"strconv"

	"github.com/2beens/corosched/internal/coros"
	"github.com/2beens/corosched/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Calculator wraps the two pre-flight endpoints that ask the backend to derive
// distance, duration and training load for a candidate exercise tree. Both
// calls are read-only and side-effect free; the backend is the sole source of
// truth for training-load numbers, so the mutation engine calls these before
// every submission instead of computing metrics locally.
type Calculator struct {
	client *coros.Client
}

func NewCalculator(client *coros.Client) *Calculator {
	return &Calculator{client: client}
}

// EstimateResult is the lean preview: totals only, no bar chart.
type EstimateResult struct {
	Distance            Meters `json:"distance"`
	DistanceDisplayUnit int    `json:"distanceDisplayUnit"`
	Duration            int    `json:"duration"`
	TrainingLoad        int    `json:"trainingLoad"`
	Sets                int    `json:"sets"`
}

// CalculateResult is the full preview, including the per-exercise bar chart.
// For a brand-new workout the actual* fields come back zeroed; recalculating
// an existing workout returns the server's last snapshot in them.
type CalculateResult struct {
	ActualDistance     Meters         `json:"actualDistance"`
	ActualDuration     int            `json:"actualDuration"`
	ActualTrainingLoad int            `json:"actualTrainingLoad"`
	ExerciseBarChart   []BarChartItem `json:"exerciseBarChart"`
	PlanDistance       Meters         `json:"planDistance"`
	PlanDuration       int            `json:"planDuration"`
	PlanElevGain       float64        `json:"planElevGain"`
	PlanPitch          float64        `json:"planPitch"`
	PlanTrainingLoad   int            `json:"planTrainingLoad"`
}

// estimate request shapes: a skeleton entity plus a lean program, without the
// identity and metric fields of the full calculate/schedule payloads.
type estimateEntity struct {
	HappenDay        string `json:"happenDay"`
	IDInPlan         int64  `json:"idInPlan"`
	SortNo           int    `json:"sortNo"`
	DayNo            int    `json:"dayNo"`
	SortNoInPlan     int    `json:"sortNoInPlan"`
	SortNoInSchedule int    `json:"sortNoInSchedule"`
}

type estimateProgram struct {
	IDInPlan       int64         `json:"idInPlan"`
	Name           string        `json:"name"`
	SportType      SportType     `json:"sportType"`
	SubType        int           `json:"subType"`
	TotalSets      int           `json:"totalSets"`
	Sets           int           `json:"sets"`
	ExerciseNum    string        `json:"exerciseNum"`
	TargetType     string        `json:"targetType"`
	TargetValue    string        `json:"targetValue"`
	Version        int           `json:"version"`
	Simple         bool          `json:"simple"`
	Exercises      []Exercise    `json:"exercises"`
	Access         int           `json:"access"`
	Essence        int           `json:"essence"`
	EstimatedTime  int           `json:"estimatedTime"`
	OriginEssence  int           `json:"originEssence"`
	Overview       string        `json:"overview"`
	Type           int           `json:"type"`
	Unit           int           `json:"unit"`
	PBVersion      int           `json:"pbVersion"`
	SourceID       string        `json:"sourceId"`
	SourceURL      string        `json:"sourceUrl"`
	ReferExercise  ReferExercise `json:"referExercise"`
	PoolLengthID   int           `json:"poolLengthId"`
	PoolLength     int           `json:"poolLength"`
	PoolLengthUnit int           `json:"poolLengthUnit"`
}

type estimateRequest struct {
	Entity  estimateEntity  `json:"entity"`
	Program estimateProgram `json:"program"`
}

// Estimate asks the backend for the lean metric preview of a program placed on
// happenDay. The response distance is a decimal string of meters, parsed here.
func (c *Calculator) Estimate(
	ctx context.Context,
	happenDay int,
	idInPlan int64,
	program *Program,
) (_ *EstimateResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calculator.estimate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.happenDay", happenDay))

	stepCount := countSteps(program.Exercises)
	totalSets := 0
	if program.Simple {
		totalSets = stepCount
	}

	req := estimateRequest{
		Entity: estimateEntity{
			HappenDay: strconv.Itoa(happenDay),
			IDInPlan:  idInPlan,
		},
		Program: estimateProgram{
			IDInPlan:       idInPlan,
			Name:           program.Name,
			SportType:      program.SportType,
			SubType:        program.SubType,
			TotalSets:      totalSets,
			Sets:           totalSets,
			Simple:         program.Simple,
			Exercises:      program.Exercises,
			Access:         1,
			PBVersion:      2,
			SourceID:       DefaultSourceID,
			SourceURL:      DefaultSourceURL,
			PoolLengthID:   1,
			PoolLength:     2500,
			PoolLengthUnit: 2,
		},
	}

	var result EstimateResult
	if err := c.client.Post(ctx, "training/program/estimate", nil, req, &result); err != nil {
		return nil, err
	}

	log.Debugf(
		"estimate for [%s]: %.0fm, %ds, load %d",
		program.Name, float64(result.Distance), result.Duration, result.TrainingLoad,
	)
	return &result, nil
}

// Calculate asks the backend for the full metric preview of a program,
// including the per-exercise bar chart used in schedule submissions.
func (c *Calculator) Calculate(ctx context.Context, program *Program) (_ *CalculateResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "calculator.calculate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var result CalculateResult
	if err := c.client.Post(ctx, "training/program/calculate", nil, program, &result); err != nil {
		return nil, err
	}

	log.Debugf(
		"calculate for [%s]: plan %.0fm, %ds, load %d, %d bar chart entries",
		program.Name, float64(result.PlanDistance), result.PlanDuration,
		result.PlanTrainingLoad, len(result.ExerciseBarChart),
	)
	return &result, nil
}

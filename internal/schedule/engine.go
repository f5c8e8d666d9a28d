package schedule

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/2beens/corosched/internal/coros"
	"github.com/2beens/corosched/internal/telemetry/tracing"
	"github.com/2beens/corosched/internal/workout"
	"github.com/2beens/corosched/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ErrWorkoutNotFound is returned when a move targets an idInPlan that is not
// present in the fetched schedule window.
var ErrWorkoutNotFound = errors.New("workout not found in schedule")

// Engine builds and submits the three-part diff (entities, programs,
// versionObjects) that creates, moves or deletes scheduled workouts. Every
// mutation is read-modify-write against live remote state: nothing is cached
// here, and all serialization of concurrent edits is delegated to the
// backend's pbVersion check.
type Engine struct {
	client *coros.Client
	calc   *workout.Calculator
}

func NewEngine(client *coros.Client, calc *workout.Calculator) *Engine {
	return &Engine{
		client: client,
		calc:   calc,
	}
}

// Fetch queries the current schedule state for a day range.
func (e *Engine) Fetch(ctx context.Context, startDay, endDay int) (_ *Schedule, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "schedule.fetch")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("schedule.startDay", startDay),
		attribute.Int("schedule.endDay", endDay),
	)

	params := url.Values{}
	params.Set("startDate", strconv.Itoa(startDay))
	params.Set("endDate", strconv.Itoa(endDay))
	params.Set("supportRestExercise", "1")

	var sched Schedule
	if err := e.client.Get(ctx, "training/schedule/query", params, &sched); err != nil {
		return nil, fmt.Errorf("query schedule: %w", err)
	}
	return &sched, nil
}

// Diff is one batched schedule submission. Multiple version objects may be
// combined (e.g. one create plus one delete); the backend applies them as a
// single atomic versioned transaction.
type Diff struct {
	Entities       []Entity
	Programs       []*workout.Program
	VersionObjects []VersionObject
}

type updateRequest struct {
	PBVersion      int64              `json:"pbVersion"`
	Entities       []Entity           `json:"entities"`
	Programs       []*workout.Program `json:"programs"`
	VersionObjects []VersionObject    `json:"versionObjects"`
}

// Submit sends a diff with the session's pbVersion. A stale version is
// reported by the backend as an envelope error which coros.IsVersionConflict
// recognizes; callers then refetch and recompute the diff, never resubmit it
// blindly.
func (e *Engine) Submit(ctx context.Context, session *PlanSession, diff Diff) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "schedule.submit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(diff.VersionObjects) == 0 {
		return fmt.Errorf("diff for plan %s has no version objects", session.PlanID)
	}
	for _, vo := range diff.VersionObjects {
		if vo.Status == workout.StatusCreate && vo.ID <= session.MaxIDInPlan {
			return fmt.Errorf(
				"idInPlan %d already issued in plan %s (max is %d)",
				vo.ID, session.PlanID, session.MaxIDInPlan,
			)
		}
	}

	req := updateRequest{
		PBVersion:      session.PBVersion,
		Entities:       diff.Entities,
		Programs:       diff.Programs,
		VersionObjects: diff.VersionObjects,
	}
	// the backend wants the lists present even when empty (delete-only diffs)
	if req.Entities == nil {
		req.Entities = []Entity{}
	}
	if req.Programs == nil {
		req.Programs = []*workout.Program{}
	}

	if err := e.client.PostMutating(ctx, "training/schedule/update", nil, req, nil); err != nil {
		if coros.IsVersionConflict(err) {
			log.Warnf("schedule submit rejected, stale pbVersion %d for plan %s", session.PBVersion, session.PlanID)
		}
		return err
	}
	return nil
}

// CreateWorkout describes a workout to place on the calendar.
type CreateWorkout struct {
	Name      string
	Sport     workout.SportType
	HappenDay int // YYYYMMDD
	Nodes     []workout.Node
}

// CreateResult reports the outcome of a create, with the metrics the backend
// derived during the calculate pre-flight.
type CreateResult struct {
	IDInPlan         int64
	Name             string
	HappenDay        int
	PlanDistance     float64 // meters
	PlanDuration     int     // seconds
	PlanTrainingLoad int
}

// Create builds the exercise tree, runs the calculate pre-flight, and submits
// the status=1 diff. On success the session's MaxIDInPlan is advanced; the
// caller must persist it before issuing further creates.
func (e *Engine) Create(ctx context.Context, session *PlanSession, req CreateWorkout) (_ *CreateResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "schedule.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.name", req.Name))

	if _, err := pkg.DayToDate(req.HappenDay); err != nil {
		return nil, fmt.Errorf("invalid happenDay: %w", err)
	}

	program, err := workout.NewProgram(req.Name, req.Sport, req.Nodes)
	if err != nil {
		return nil, err
	}

	calcRes, err := e.calc.Calculate(ctx, program)
	if err != nil {
		return nil, fmt.Errorf("calculate pre-flight: %w", err)
	}

	idInPlan := session.NextIDInPlan()
	program.IDInPlan = idInPlan
	program.ApplyCalculation(calcRes)

	entity := Entity{
		IDInPlan:         idInPlan,
		HappenDay:        coros.StringInt64(req.HappenDay),
		ExerciseBarChart: calcRes.ExerciseBarChart,
	}

	diff := Diff{
		Entities: []Entity{entity},
		Programs: []*workout.Program{program},
		VersionObjects: []VersionObject{
			{ID: idInPlan, Status: workout.StatusCreate},
		},
	}
	if err := e.Submit(ctx, session, diff); err != nil {
		return nil, err
	}

	session.MaxIDInPlan = idInPlan
	log.Infof("workout [%s] created on %d as idInPlan %d", req.Name, req.HappenDay, idInPlan)

	return &CreateResult{
		IDInPlan:         idInPlan,
		Name:             req.Name,
		HappenDay:        req.HappenDay,
		PlanDistance:     float64(calcRes.PlanDistance),
		PlanDuration:     calcRes.PlanDuration,
		PlanTrainingLoad: calcRes.PlanTrainingLoad,
	}, nil
}

// Preview runs the lean estimate pre-flight for a workout without touching
// the calendar. Safe to call at any time.
func (e *Engine) Preview(ctx context.Context, session *PlanSession, req CreateWorkout) (*workout.EstimateResult, error) {
	program, err := workout.NewProgram(req.Name, req.Sport, req.Nodes)
	if err != nil {
		return nil, err
	}
	return e.calc.Estimate(ctx, req.HappenDay, session.NextIDInPlan(), program)
}

// Move changes an existing workout's happenDay. The current entity and
// program are refetched first so fields unknown to this client are
// resubmitted untouched; only the entity's date changes. The search window
// must cover the workout's current date.
func (e *Engine) Move(
	ctx context.Context,
	session *PlanSession,
	idInPlan int64,
	searchStartDay, searchEndDay, newHappenDay int,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "schedule.move")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("workout.idInPlan", idInPlan))

	if _, err := pkg.DayToDate(newHappenDay); err != nil {
		return fmt.Errorf("invalid happenDay: %w", err)
	}

	sched, err := e.Fetch(ctx, searchStartDay, searchEndDay)
	if err != nil {
		return err
	}
	session.Refresh(sched)

	entity := sched.FindEntity(idInPlan)
	program := sched.FindProgram(idInPlan)
	if entity == nil || program == nil {
		return fmt.Errorf("%w: idInPlan %d", ErrWorkoutNotFound, idInPlan)
	}
	if err := workout.ValidateSequence(program.Exercises); err != nil {
		return fmt.Errorf("fetched program %d: %w", idInPlan, err)
	}

	entity.HappenDay = coros.StringInt64(newHappenDay)

	diff := Diff{
		Entities: []Entity{*entity},
		Programs: []*workout.Program{program},
		VersionObjects: []VersionObject{
			{
				ID:            idInPlan,
				Status:        workout.StatusUpdate,
				PlanProgramID: idInPlan,
				PlanID:        session.PlanID,
			},
		},
	}
	if err := e.Submit(ctx, session, diff); err != nil {
		return err
	}

	log.Infof("workout [%s] (idInPlan %d) moved to %d", program.Name, idInPlan, newHappenDay)
	return nil
}

// Delete removes a workout from the calendar. Per the diff contract, only the
// status=3 version object is submitted; entities and programs stay empty.
// Deleting an idInPlan that was never created is rejected by the backend as an
// envelope error, which is propagated as-is. The freed idInPlan is never
// reused.
func (e *Engine) Delete(ctx context.Context, session *PlanSession, idInPlan int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "schedule.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("workout.idInPlan", idInPlan))

	diff := Diff{
		VersionObjects: []VersionObject{
			{
				ID:            idInPlan,
				Status:        workout.StatusDelete,
				PlanProgramID: idInPlan,
				PlanID:        session.PlanID,
			},
		},
	}
	if err := e.Submit(ctx, session, diff); err != nil {
		return err
	}

	log.Infof("workout idInPlan %d deleted from plan %s", idInPlan, session.PlanID)
	return nil
}

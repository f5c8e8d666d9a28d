package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/2beens/corosched/internal/coros"
	"github.com/2beens/corosched/internal/schedule"
	"github.com/2beens/corosched/internal/telemetry/tracing"
	"github.com/2beens/corosched/internal/workout"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const detailCacheTTLSeconds = 300

// Client manages reusable training plan templates: multi-week workout
// sequences stored day-numbered instead of dated, which executeSubPlan later
// stamps onto the calendar starting at a concrete day.
type Client struct {
	api   *coros.Client
	calc  *workout.Calculator
	cache *freecache.Cache
}

func NewClient(api *coros.Client, calc *workout.Calculator, cache *freecache.Cache) *Client {
	return &Client{
		api:   api,
		calc:  calc,
		cache: cache,
	}
}

// Summary is one row of the plan library listing.
type Summary struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Overview     string          `json:"overview"`
	TotalDay     int             `json:"totalDay"`
	Weeks        int             `json:"weeks"`
	Status       int             `json:"status"`
	SportType    int             `json:"sportType"`
	ProgramCount coros.FlexInt64 `json:"programCount"`
}

// Detail is the full plan template: its entities are day-numbered (dayNo
// starting at 1), not dated.
type Detail struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Overview    string             `json:"overview"`
	TotalDay    int                `json:"totalDay"`
	Weeks       int                `json:"weeks"`
	PBVersion   int64              `json:"pbVersion"`
	MaxIDInPlan coros.FlexInt64    `json:"maxIdInPlan"`
	Entities    []schedule.Entity  `json:"entities"`
	Programs    []*workout.Program `json:"programs"`
}

type listRequest struct {
	StatusList []int `json:"statusList"`
}

type listResult struct {
	DataList []Summary `json:"dataList"`
}

// List returns the plan library. All statuses are requested; filtering is
// left to the caller.
func (c *Client) List(ctx context.Context) (_ []Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plans.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var result listResult
	req := listRequest{StatusList: []int{0, 1, 2}}
	if err := c.api.Post(ctx, "training/plan/query", nil, req, &result); err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	return result.DataList, nil
}

// Detail fetches one plan template with its full workout content. Results are
// cached briefly; any mutation through this client invalidates the entry.
func (c *Client) Detail(ctx context.Context, planID string) (_ *Detail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plans.detail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("plan.id", planID))

	cacheKey := detailCacheKey(planID)
	if cached, err := c.cache.Get(cacheKey); err == nil {
		var detail Detail
		if err := json.Unmarshal(cached, &detail); err == nil {
			log.Tracef("plan %s detail served from cache", planID)
			return &detail, nil
		}
	}

	params := url.Values{}
	params.Set("id", planID)

	var detail Detail
	if err := c.api.Get(ctx, "training/plan/detail", params, &detail); err != nil {
		return nil, fmt.Errorf("query plan detail: %w", err)
	}

	if encoded, err := json.Marshal(detail); err == nil {
		if err := c.cache.Set(cacheKey, encoded, detailCacheTTLSeconds); err != nil {
			log.Errorf("cache plan %s detail: %s", planID, err)
		}
	}
	return &detail, nil
}

// PlanWorkout is one workout of a new plan template, placed by day number
// (1-based from the plan start).
type PlanWorkout struct {
	Name  string
	Sport workout.SportType
	DayNo int
	Nodes []workout.Node
}

type createRequest struct {
	Name           string                   `json:"name"`
	Overview       string                   `json:"overview"`
	TotalDay       int                      `json:"totalDay"`
	Weeks          int                      `json:"weeks"`
	MaxIDInPlan    int64                    `json:"maxIdInPlan"`
	Entities       []schedule.Entity        `json:"entities"`
	Programs       []*workout.Program       `json:"programs"`
	VersionObjects []schedule.VersionObject `json:"versionObjects"`
}

type createResult struct {
	ID string `json:"id"`
}

// Create builds a new plan template from day-numbered workouts. Every program
// goes through the calculate pre-flight so the template carries backend-derived
// metrics, same as calendar submissions. The plan length is padded to whole
// weeks.
func (c *Client) Create(ctx context.Context, name, overview string, workouts []PlanWorkout) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plans.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("plan.name", name))

	if len(workouts) == 0 {
		return "", fmt.Errorf("plan [%s] has no workouts", name)
	}

	maxDay := 0
	for _, w := range workouts {
		if w.DayNo < 1 {
			return "", fmt.Errorf("workout [%s]: dayNo must be >= 1, got %d", w.Name, w.DayNo)
		}
		if w.DayNo > maxDay {
			maxDay = w.DayNo
		}
	}
	weeks := (maxDay + 6) / 7

	req := createRequest{
		Name:     name,
		Overview: overview,
		TotalDay: weeks * 7,
		Weeks:    weeks,
	}

	for i, w := range workouts {
		idInPlan := int64(i + 1)

		program, err := workout.NewProgram(w.Name, w.Sport, w.Nodes)
		if err != nil {
			return "", fmt.Errorf("workout [%s]: %w", w.Name, err)
		}

		calcRes, err := c.calc.Calculate(ctx, program)
		if err != nil {
			return "", fmt.Errorf("calculate workout [%s]: %w", w.Name, err)
		}
		program.IDInPlan = idInPlan
		program.ApplyCalculation(calcRes)

		req.Entities = append(req.Entities, schedule.Entity{
			IDInPlan:         idInPlan,
			DayNo:            w.DayNo,
			ExerciseBarChart: calcRes.ExerciseBarChart,
		})
		req.Programs = append(req.Programs, program)
		req.VersionObjects = append(req.VersionObjects, schedule.VersionObject{
			ID:     idInPlan,
			Status: workout.StatusCreate,
		})
		req.MaxIDInPlan = idInPlan
	}

	var result createResult
	if err := c.api.PostMutating(ctx, "training/plan/add", nil, req, &result); err != nil {
		return "", err
	}

	log.Infof("plan [%s] created as %s (%d workouts over %d weeks)", name, result.ID, len(workouts), weeks)
	return result.ID, nil
}

type deleteRequest struct {
	IDList []string `json:"idList"`
}

// Delete removes plan templates from the library. Applied calendar workouts
// are not touched.
func (c *Client) Delete(ctx context.Context, planIDs ...string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plans.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(planIDs) == 0 {
		return nil
	}

	req := deleteRequest{IDList: planIDs}
	if err := c.api.PostMutating(ctx, "training/plan/delete", nil, req, nil); err != nil {
		return err
	}

	for _, id := range planIDs {
		c.cache.Del(detailCacheKey(id))
	}
	log.Infof("deleted %d plan(s)", len(planIDs))
	return nil
}

// Apply stamps a plan template onto the calendar starting at startDay. The
// backend materializes all entities and programs itself; dayNo N lands on
// startDay+N-1. The diff machinery is bypassed entirely.
func (c *Client) Apply(ctx context.Context, planID string, startDay int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plans.apply")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("plan.id", planID),
		attribute.Int("plan.startDay", startDay),
	)

	params := url.Values{}
	params.Set("subPlanId", planID)
	params.Set("startDay", strconv.Itoa(startDay))

	// the endpoint takes its arguments in the query string; the body is an
	// empty JSON object
	if err := c.api.PostMutating(ctx, "training/schedule/executeSubPlan", params, struct{}{}, nil); err != nil {
		return err
	}

	c.cache.Del(detailCacheKey(planID))
	log.Infof("plan %s applied starting %d", planID, startDay)
	return nil
}

func detailCacheKey(planID string) []byte {
	return []byte("plans::detail::" + planID)
}
